package report

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// WriteWorkbook writes sheets into one workbook. Column widths fit the
// longest cell plus two characters.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets {
		name := s.Name
		if utf8.RuneCountInString(name) > maxSheetName {
			name = string([]rune(name)[:maxSheetName])
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s, bold); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, s Sheet, headerStyle int) error {
	widths := make([]int, len(s.Header))
	rows := append([][]string{s.Header}, s.Rows...)
	for r, row := range rows {
		cells := make([]any, len(row))
		for c, v := range row {
			cells[c] = v
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(v); n > widths[c] {
				widths[c] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return err
		}
	}

	if len(s.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(width+2)); err != nil {
			return err
		}
	}
	return nil
}

// SaveWorkbook writes sheets to a workbook file at path.
func SaveWorkbook(path string, sheets []Sheet) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	err = WriteWorkbook(out, sheets)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
