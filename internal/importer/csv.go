package importer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser reads comma separated exports with a header row.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads every record. Rows may be ragged.
func (p *CSVParser) Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return newTable(records), nil
}
