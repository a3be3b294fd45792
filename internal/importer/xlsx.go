package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of an Excel workbook. Cells are returned
// raw, so dates arrive as Excel serial numbers.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads the first sheet.
func (p *XLSXParser) Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return newTable(rows), nil
}
