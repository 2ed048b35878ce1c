// Package xlsxio reads uploaded spreadsheets into frames and exports frames
// as spreadsheets.
package xlsxio

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/header"
)

// DefaultSheet is the sheet name used when exporting.
const DefaultSheet = "dados"

type Options struct {
	// Sheet to read; the first sheet when empty.
	Sheet string
}

// ReadTable reads a workbook from path.
func ReadTable(path string, opt Options) (*frame.Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = wb.Close() }()
	return readWorkbook(wb, opt)
}

// Read reads a workbook from r, e.g. an upload body.
func Read(r io.Reader, opt Options) (*frame.Frame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = wb.Close() }()
	return readWorkbook(wb, opt)
}

// readWorkbook takes the first non-empty row of the sheet as the header and
// the remaining rows as data. Trailing empty rows are dropped.
func readWorkbook(wb *excelize.File, opt Options) (*frame.Frame, error) {
	sheet := opt.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets found")
		}
		sheet = sheets[0]
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return frame.Empty(), nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	names := make([]string, width)
	copy(names, rows[0])
	names = header.Unique(header.SanitizeAll(names))
	return frame.FromText(names, rows[1:])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteAll exports f to a single-sheet workbook. Numbers stay numeric; every
// other cell is written as its text form.
func WriteAll(path string, f *frame.Frame) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	if err := wb.SetSheetName(wb.GetSheetName(0), DefaultSheet); err != nil {
		return err
	}
	if err := writeRow(wb, 1, stringsToAny(f.Columns())); err != nil {
		return err
	}
	for r := 0; r < f.Rows(); r++ {
		row := make([]any, f.Cols())
		for c := range row {
			v := f.At(r, c)
			switch v.Kind() {
			case frame.KindNull:
				row[c] = nil
			case frame.KindInt:
				row[c], _ = v.Int()
			case frame.KindFloat:
				row[c], _ = v.Float()
			default:
				row[c] = v.Text()
			}
		}
		if err := writeRow(wb, r+2, row); err != nil {
			return err
		}
	}
	return wb.SaveAs(path)
}

func writeRow(wb *excelize.File, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(DefaultSheet, cell, &row)
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// Sink replaces a spreadsheet export on every Write.
type Sink struct{ Path string }

func (s *Sink) Write(f *frame.Frame) error { return WriteAll(s.Path, f) }
func (s *Sink) Close() error               { return nil }
