package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

// MinSchedulePages is the header page plus at least one page of sessions
const MinSchedulePages = 2

// Validator checks that an input is a readable schedule document
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs file system and structural validation on a PDF file
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return invalid("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return invalid("file does not exist: %s", filePath)
	}
	if err != nil {
		return serrors.Wrap(err, serrors.KindInvalidDocument, "cannot access file")
	}

	if fileInfo.IsDir() {
		return invalid("path is a directory, not a file: %s", filePath)
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return invalid("file is not a PDF: %s", filePath)
	}
	if err := v.checkSize(fileInfo.Size()); err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return serrors.Wrap(err, serrors.KindInvalidDocument, "cannot open file")
	}
	defer f.Close()

	return v.checkStructure(f)
}

// ValidateBytes validates an in-memory PDF
func (v *Validator) ValidateBytes(data []byte) error {
	if err := v.checkSize(int64(len(data))); err != nil {
		return err
	}
	return v.checkStructure(bytes.NewReader(data))
}

func (v *Validator) checkSize(size int64) error {
	if size == 0 {
		return invalid("file is empty")
	}
	if size > v.maxFileSize {
		return invalid("file too large: %d bytes (max: %d bytes)", size, v.maxFileSize)
	}
	return nil
}

// checkStructure parses the cross reference table and page tree with pdfcpu
// in relaxed mode.
func (v *Validator) checkStructure(rs io.ReadSeeker) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return serrors.Wrap(err, serrors.KindInvalidDocument, "invalid PDF file")
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return serrors.Wrap(err, serrors.KindInvalidDocument, "cannot determine page count")
	}
	if ctx.PageCount < MinSchedulePages {
		return invalid("schedule needs at least %d pages, got %d", MinSchedulePages, ctx.PageCount)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return serrors.New(serrors.KindInvalidDocument, fmt.Sprintf(format, args...))
}
