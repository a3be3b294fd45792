package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Command values recorded in the run log.
const (
	CommandPayout = "payout"
	CommandSettle = "settle"
)

// Entry records one reconciled payout category or settlement feed.
//
// For payout runs Source is the ledger file, SourceOnly counts ledger rows
// nobody reported and ReportedOnly counts pasted records without a ledger row.
// For settle runs Source is the provider export, Matched counts rows joined to
// an order and SourceOnly counts rows moved to the catch-all plan.
type Entry struct {
	Timestamp    time.Time
	Session      string
	Command      string
	Subject      string // category or feed name
	Source       string
	Matched      int
	Differences  int
	SourceOnly   int
	ReportedOnly int
	Amount       decimal.Decimal
	Output       string // report path, empty when none was written
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,session,command,subject,source,matched,differences,source_only,reported_only,amount,output"

const (
	numFields       = 11
	logDir          = "logs"
	logFile         = "run-log.csv"
	colTimestamp    = 0
	colSession      = 1
	colCommand      = 2
	colSubject      = 3
	colSource       = 4
	colMatched      = 5
	colDifferences  = 6
	colSourceOnly   = 7
	colReportedOnly = 8
	colAmount       = 9
	colOutput       = 10
)

// Path returns the run log location under an output directory.
func Path(dir string) string {
	return filepath.Join(dir, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.Session
	row[colCommand] = e.Command
	row[colSubject] = e.Subject
	row[colSource] = e.Source
	row[colMatched] = strconv.Itoa(e.Matched)
	row[colDifferences] = strconv.Itoa(e.Differences)
	row[colSourceOnly] = strconv.Itoa(e.SourceOnly)
	row[colReportedOnly] = strconv.Itoa(e.ReportedOnly)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	e := Entry{
		Timestamp: ts,
		Session:   record[colSession],
		Command:   record[colCommand],
		Subject:   record[colSubject],
		Source:    record[colSource],
		Amount:    amount,
		Output:    record[colOutput],
	}
	counts := []struct {
		col int
		dst *int
	}{
		{colMatched, &e.Matched},
		{colDifferences, &e.Differences},
		{colSourceOnly, &e.SourceOnly},
		{colReportedOnly, &e.ReportedOnly},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Append writes entries to <dir>/logs/run-log.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
