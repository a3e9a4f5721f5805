package facility

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

const (
	ColumnName          = "Name"
	ColumnStreetAddress = "Street Address"

	xlsCharset = "utf-8"

	// DefaultSheet is the worksheet read when none is configured
	DefaultSheet = "Sheet1"
)

// Load reads the facilities table from an .xlsx or legacy .xls workbook, or a
// .csv file
func Load(path, sheet string) ([]Building, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	case ".xls":
		return LoadXLS(path, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot open facilities table")
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, serrors.Newf(serrors.KindInvalidTable, "unsupported facilities table", "%s", path)
	}
}

// LoadXLSX reads the facilities table from a worksheet
func LoadXLSX(path, sheet string) ([]Building, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot open facilities workbook")
	}
	defer f.Close()

	return readWorkbook(f, sheet)
}

// ReadXLSX reads the facilities table from a workbook stream
func ReadXLSX(r io.Reader, sheet string) ([]Building, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot open facilities workbook")
	}
	defer f.Close()

	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) ([]Building, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, fmt.Sprintf("cannot read sheet %q", sheet))
	}
	return buildingsFromRows(rows)
}

// LoadXLS reads the facilities table from a worksheet of a legacy BIFF
// workbook, the format the campus facility list is published in
func LoadXLS(path, sheet string) (buildings []Building, err error) {
	// extrame/xls panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			err = serrors.Wrap(fmt.Errorf("%s: %v", path, r), serrors.KindInvalidTable, "cannot open facilities workbook")
		}
	}()

	wb, err := xls.Open(path, xlsCharset)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot open facilities workbook")
	}
	return readLegacyWorkbook(wb, sheet)
}

func readLegacyWorkbook(wb *xls.WorkBook, sheet string) ([]Building, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil || ws.Name != sheet {
			continue
		}
		return buildingsFromRows(legacyRows(ws))
	}
	return nil, serrors.Newf(serrors.KindInvalidTable, fmt.Sprintf("cannot read sheet %q", sheet), "sheet not found")
}

// legacyRows flattens a worksheet into positional cells; missing rows come
// back empty so header indexes line up.
func legacyRows(ws *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows
}

// ReadCSV reads the facilities table from comma separated text with a header row
func ReadCSV(r io.Reader) ([]Building, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot parse facilities csv")
	}
	return buildingsFromRows(rows)
}

// buildingsFromRows locates the Name and Street Address columns in the header
// row and returns the data rows in order. Rows without a street address are
// dropped.
func buildingsFromRows(rows [][]string) ([]Building, error) {
	if len(rows) == 0 {
		return nil, serrors.New(serrors.KindInvalidTable, "facilities table is empty")
	}

	nameIdx, addrIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case ColumnName:
			nameIdx = i
		case ColumnStreetAddress:
			addrIdx = i
		}
	}
	if nameIdx < 0 || addrIdx < 0 {
		return nil, serrors.Newf(serrors.KindInvalidTable, "facilities table header",
			"missing %q or %q column", ColumnName, ColumnStreetAddress)
	}

	buildings := make([]Building, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var b Building
		if nameIdx < len(row) {
			b.Name = strings.TrimSpace(row[nameIdx])
		}
		if addrIdx < len(row) {
			b.StreetAddress = strings.TrimSpace(row[addrIdx])
		}
		if b.Name == "" || b.StreetAddress == "" {
			continue
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}
