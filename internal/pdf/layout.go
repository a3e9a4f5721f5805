package pdf

import (
	"math"
	"sort"
	"strings"
)

// LayoutParams controls how glyphs are grouped into lines and lines into boxes.
// Ratios are relative to the font size.
type LayoutParams struct {
	LineTolerance float64 // max baseline drift within one line
	WordSpace     float64 // min gap treated as a space
	CharMargin    float64 // min gap that splits a baseline into separate lines
	LineMargin    float64 // max extra leading between lines of one box
}

// DefaultLayoutParams returns parameters tuned for browser-printed schedules
func DefaultLayoutParams() LayoutParams {
	return LayoutParams{
		LineTolerance: 0.5,
		WordSpace:     0.2,
		CharMargin:    2.0,
		LineMargin:    0.5,
	}
}

type glyph struct {
	X, Y, W float64
	Size    float64
	S       string
}

type textLine struct {
	x0, x1 float64
	y      float64
	size   float64
	text   string
}

type textBox struct {
	lines  []textLine
	x0, x1 float64
}

func fontSize(s float64) float64 {
	if s <= 0 {
		return 12.0 // ledongthuc reports 0 for some Type3 fonts
	}
	return s
}

// groupLines orders glyphs top-down and joins those sharing a baseline.
func groupLines(glyphs []glyph, p LayoutParams) []textLine {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []textLine
	var current []glyph
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, splitLine(current, p)...)
			current = nil
		}
	}

	for _, g := range sorted {
		if len(current) > 0 {
			ref := current[0]
			if math.Abs(ref.Y-g.Y) > p.LineTolerance*fontSize(ref.Size) {
				flush()
			}
		}
		current = append(current, g)
	}
	flush()
	return lines
}

// splitLine orders one baseline's glyphs left to right and cuts it wherever
// the gap exceeds CharMargin, so side-by-side columns stay apart.
func splitLine(glyphs []glyph, p LayoutParams) []textLine {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var out []textLine
	start := 0
	end := glyphs[0].X + glyphs[0].W
	for i := 1; i < len(glyphs); i++ {
		g := glyphs[i]
		if g.X-end > p.CharMargin*fontSize(g.Size) {
			out = append(out, buildLine(glyphs[start:i], p))
			start = i
		}
		end = math.Max(end, g.X+g.W)
	}
	return append(out, buildLine(glyphs[start:], p))
}

func buildLine(glyphs []glyph, p LayoutParams) textLine {
	var b strings.Builder
	line := textLine{x0: glyphs[0].X, y: glyphs[0].Y, size: fontSize(glyphs[0].Size)}
	end := glyphs[0].X
	for i, g := range glyphs {
		if i > 0 && g.X-end > p.WordSpace*fontSize(g.Size) && !strings.HasSuffix(b.String(), " ") && g.S != " " {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = math.Max(end, g.X+g.W)
		line.size = math.Max(line.size, fontSize(g.Size))
	}
	line.x1 = end
	line.text = strings.TrimRight(b.String(), " ")
	return line
}

// groupBoxes merges consecutive lines that overlap horizontally and sit
// within one line height plus margin of each other.
func groupBoxes(lines []textLine, p LayoutParams) []textBox {
	var boxes []textBox
	for _, ln := range lines {
		if strings.TrimSpace(ln.text) == "" {
			continue
		}
		placed := false
		for i := len(boxes) - 1; i >= 0; i-- {
			box := &boxes[i]
			last := box.lines[len(box.lines)-1]
			gap := last.y - ln.y
			if gap <= 0 || gap > (1+p.LineMargin)*math.Max(last.size, ln.size) {
				continue
			}
			if ln.x0 >= box.x1 || ln.x1 <= box.x0 {
				continue
			}
			box.lines = append(box.lines, ln)
			box.x0 = math.Min(box.x0, ln.x0)
			box.x1 = math.Max(box.x1, ln.x1)
			placed = true
			break
		}
		if !placed {
			boxes = append(boxes, textBox{lines: []textLine{ln}, x0: ln.x0, x1: ln.x1})
		}
	}
	return boxes
}

func (b textBox) block() Block {
	var sb strings.Builder
	for _, ln := range b.lines {
		sb.WriteString(ln.text)
		sb.WriteByte('\n')
	}
	first, last := b.lines[0], b.lines[len(b.lines)-1]
	return Block{
		Kind: BlockTextBox,
		Text: sb.String(),
		Bounds: Rectangle{
			LowerLeft:  Point{X: b.x0, Y: last.y},
			UpperRight: Point{X: b.x1, Y: first.y + first.size},
		},
	}
}

// layoutPage turns raw glyphs and rectangles into ordered blocks.
func layoutPage(number int, glyphs []glyph, rects []Rectangle, p LayoutParams) Page {
	page := Page{Number: number}
	for _, box := range groupBoxes(groupLines(glyphs, p), p) {
		page.Blocks = append(page.Blocks, box.block())
	}
	for _, r := range rects {
		page.Blocks = append(page.Blocks, Block{Kind: BlockRect, Bounds: r})
	}
	return page
}
