package pdf

import "context"

// BlockKind is the layout primitive a block was built from
type BlockKind string

const (
	// BlockTextBox is a group of horizontally aligned, vertically adjacent text lines
	BlockTextBox BlockKind = "textbox_horizontal"
	// BlockRect is a filled or stroked rectangle
	BlockRect BlockKind = "rect"
)

// Point represents a coordinate point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rectangle represents a rectangular area
type Rectangle struct {
	LowerLeft  Point `json:"lower_left"`
	UpperRight Point `json:"upper_right"`
}

// Block is one layout element of a page. Text boxes carry their lines joined
// by "\n" with a single trailing "\n".
type Block struct {
	Kind   BlockKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Bounds Rectangle `json:"bounds"`
}

// IsTextBox reports whether the block is a horizontal text box
func (b Block) IsTextBox() bool {
	return b.Kind == BlockTextBox
}

// Page is the ordered list of blocks on one page. Text boxes come first in
// reading order, followed by other primitives.
type Page struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks"`
}

// Source yields the pages of a schedule document
type Source interface {
	Pages(ctx context.Context) ([]Page, error)
}

// StaticSource is a Source over pre-extracted pages
type StaticSource []Page

// Pages returns the wrapped pages
func (s StaticSource) Pages(context.Context) ([]Page, error) {
	return s, nil
}
