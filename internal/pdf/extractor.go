package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

// Extractor reads text boxes from PDF pages using ledongthuc/pdf
type Extractor struct {
	layout LayoutParams
	logger *zap.Logger
}

// NewExtractor creates an extractor. A nil logger discards output.
func NewExtractor(layout LayoutParams, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{layout: layout, logger: logger}
}

// ExtractFile extracts every page of the document at path
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidDocument, "failed to open PDF")
	}
	defer f.Close()

	return e.extract(ctx, reader)
}

// ExtractBytes extracts every page of an in-memory document
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidDocument, "failed to open PDF")
	}
	return e.extract(ctx, reader)
}

func (e *Extractor) extract(ctx context.Context, reader *pdf.Reader) ([]Page, error) {
	numPages := reader.NumPage()
	pages := make([]Page, 0, numPages)

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := e.extractPage(reader, pageNum)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("extracted page",
			zap.Int("page", pageNum),
			zap.Int("blocks", len(page.Blocks)))
		pages = append(pages, page)
	}
	return pages, nil
}

// extractPage converts one page. ledongthuc panics on some malformed content
// streams, so panics surface as document errors.
func (e *Extractor) extractPage(reader *pdf.Reader, pageNum int) (page Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = serrors.Wrap(fmt.Errorf("page %d: %v", pageNum, r), serrors.KindInvalidDocument, "failed to read page content")
		}
	}()

	p := reader.Page(pageNum)
	if p.V.IsNull() {
		return Page{Number: pageNum}, nil
	}

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	rects := make([]Rectangle, 0, len(content.Rect))
	for _, r := range content.Rect {
		rects = append(rects, Rectangle{
			LowerLeft:  Point{X: r.Min.X, Y: r.Min.Y},
			UpperRight: Point{X: r.Max.X, Y: r.Max.Y},
		})
	}

	return layoutPage(pageNum, glyphs, rects, e.layout), nil
}

// FileSource is a Source backed by a PDF file on disk
type FileSource struct {
	Path      string
	Extractor *Extractor
}

// Pages extracts the file's pages
func (s FileSource) Pages(ctx context.Context) ([]Page, error) {
	return s.Extractor.ExtractFile(ctx, s.Path)
}

// BytesSource is a Source backed by an in-memory PDF
type BytesSource struct {
	Data      []byte
	Extractor *Extractor
}

// Pages extracts the buffer's pages
func (s BytesSource) Pages(ctx context.Context) ([]Page, error) {
	return s.Extractor.ExtractBytes(ctx, s.Data)
}
