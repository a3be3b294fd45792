package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/payrecon-dev/payrecon/internal/paste"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// excelSerial matches Excel date serials, which is how XLSX date cells arrive.
var excelSerial = regexp.MustCompile(`^[0-9]{4,6}(\.[0-9]+)?$`)

// integralFloat matches ids a spreadsheet turned into floats, e.g. "1001.0".
var integralFloat = regexp.MustCompile(`^([0-9]+)\.0+$`)

// ParseAmount reads a money cell. Blank cells are zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, nil
	}
	d, err := paste.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// ParseTime reads a timestamp cell as wall clock time in UTC. Any zone in the
// value is dropped, not converted. ok is false for blank or unknown values.
func ParseTime(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if excelSerial.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return t.Round(time.Second), true
			}
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), true
		}
	}
	return time.Time{}, false
}

func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ID normalizes an identifier cell.
func ID(s string) string {
	s = strings.TrimSpace(s)
	if m := integralFloat.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
