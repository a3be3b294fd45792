package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/payout"
	"github.com/payrecon-dev/payrecon/internal/settle"
)

// Sheet is one table of a report.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

const (
	timeFormat = "2006-01-02 15:04:05"
	dateFormat = "2006-01-02"
)

// Headers of the payout sheets.
var (
	MatchHeader = []string{
		"Payment Method", "Key", "Customer Email", "Login", "Disbursement Amount", "Pasted Amount",
		"Amount Difference", "Proof", "Status", "Requested Time", "Approved Time", "Disbursed Time",
		"Ledger Rows", "Pasted Rows",
	}
	LedgerOnlyHeader = []string{
		"Row", "Login", "Customer Email", "Plan", "Amount", "Disbursement Amount", "Payment Method",
		"Proof", "Status", "Requested Time", "Approved Time", "Disbursed Time",
	}
	PastedOnlyHeader = []string{"Payment Method", "Login", "Customer Email", "Amount"}
	SummaryHeader    = []string{"Metric", "Value"}
	RevenueHeader    = []string{"Date", "Category", "Revenue", "Rows"}
)

// settledColumns are appended to the provider columns of settled rows.
var settledColumns = []string{"Plan Type", "Grand Total", "Date", "Duplicate", "Mismatch"}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// MarshalMatch converts a match record to a row under MatchHeader.
func MarshalMatch(m model.MatchRecord) []string {
	return []string{
		m.Method.Label(),
		m.Key.String(),
		m.Email,
		m.Logins,
		money(m.LedgerAmount),
		money(m.ReportedAmount),
		money(m.Difference),
		m.Proof,
		m.Status,
		stamp(m.RequestedAt),
		stamp(m.ApprovedAt),
		stamp(m.DisbursedAt),
		strconv.Itoa(m.LedgerRecords),
		strconv.Itoa(m.ReportedRecords),
	}
}

// MarshalLedgerOnly converts a ledger row to a row under LedgerOnlyHeader.
func MarshalLedgerOnly(r model.AuthoritativeRecord) []string {
	return []string{
		strconv.Itoa(r.Row),
		r.ID,
		r.Email,
		r.Plan,
		money(r.Amount),
		money(r.DisbursedAmount),
		r.PaymentMethod,
		r.Proof,
		r.Status,
		stamp(r.RequestedAt),
		stamp(r.ApprovedAt),
		stamp(r.DisbursedAt),
	}
}

// MarshalPastedOnly converts a parsed record to a row under PastedOnlyHeader.
func MarshalPastedOnly(r model.ParsedRecord) []string {
	return []string{r.Method.Label(), r.Identity, r.Email, money(r.Amount)}
}

func summaryRows(c model.Counts) [][]string {
	return [][]string{
		{"Matched", strconv.Itoa(c.Matched)},
		{"Amount Differences", strconv.Itoa(c.Discrepant)},
		{"Ledger Only", strconv.Itoa(c.AuthoritativeOnly)},
		{"Pasted Only", strconv.Itoa(c.ReportedOnly)},
		{"Total Ledger Records", strconv.Itoa(c.TotalAuthoritative)},
		{"Total Pasted Records", strconv.Itoa(c.TotalReported)},
		{"Ledger Total", money(c.AuthoritativeTotal)},
		{"Pasted Total", money(c.ReportedTotal)},
	}
}

// PayoutSheets lays out the results one category after another. The master
// summary sheet is added only when every category has a result.
func PayoutSheets(results []model.Result, master payout.MasterSummary) []Sheet {
	var sheets []Sheet
	for _, res := range results {
		prefix := string(res.Category) + " "

		summary := Sheet{Name: prefix + "Summary", Header: SummaryHeader, Rows: summaryRows(res.Summary)}
		matched := Sheet{Name: prefix + "Matched", Header: MatchHeader}
		for _, m := range res.Matched {
			matched.Rows = append(matched.Rows, MarshalMatch(m))
		}
		diffs := Sheet{Name: prefix + "Amount Differences", Header: MatchHeader}
		for _, m := range res.Discrepant {
			diffs.Rows = append(diffs.Rows, MarshalMatch(m))
		}
		ledgerOnly := Sheet{Name: prefix + "Ledger Only", Header: LedgerOnlyHeader}
		for _, r := range res.AuthoritativeOnly {
			ledgerOnly.Rows = append(ledgerOnly.Rows, MarshalLedgerOnly(r))
		}
		pastedOnly := Sheet{Name: prefix + "Pasted Only", Header: PastedOnlyHeader}
		for _, r := range res.ReportedOnly {
			pastedOnly.Rows = append(pastedOnly.Rows, MarshalPastedOnly(r))
		}
		sheets = append(sheets, summary, matched, diffs, ledgerOnly, pastedOnly)
	}

	if master.Complete() {
		rows := summaryRows(master.Counts)
		for _, c := range model.Categories {
			rows = append(rows, []string{string(c) + " Completed", flag(master.Completed[c])})
		}
		sheets = append(sheets, Sheet{Name: "Master Summary", Header: SummaryHeader, Rows: rows})
	}
	return sheets
}

// SettlementSheets lays out a settlement run as the CFD, Futures and revenue
// sheets. Settled rows keep every provider column.
func SettlementSheets(out settle.Outcome) []Sheet {
	header := append(append([]string{}, out.Header...), settledColumns...)
	build := func(name string, rows []model.SettledRow) Sheet {
		s := Sheet{Name: name, Header: header}
		for _, r := range rows {
			s.Rows = append(s.Rows, marshalSettled(r, len(out.Header)))
		}
		return s
	}

	revenue := Sheet{Name: "Revenue Summary", Header: RevenueHeader}
	for _, l := range out.Revenue {
		revenue.Rows = append(revenue.Rows, []string{
			l.Date.Format(dateFormat), l.Category, money(l.Revenue), strconv.Itoa(l.Rows),
		})
	}
	return []Sheet{
		build("CFD", out.CFD),
		build("Futures", out.Futures),
		revenue,
	}
}

func marshalSettled(r model.SettledRow, width int) []string {
	row := make([]string, width, width+len(settledColumns))
	copy(row, r.PSP.Cells)
	return append(row,
		r.PlanType,
		money(r.GrandTotal),
		r.Date.Format(dateFormat),
		flag(r.PSP.Duplicate),
		flag(r.Mismatch),
	)
}

// FileName turns a sheet name into a file name, e.g. "Forex Ledger Only"
// into "forex_ledger_only.csv".
func FileName(sheet string) string {
	name := strings.ToLower(strings.Join(strings.Fields(sheet), "_"))
	return fmt.Sprintf("%s.csv", name)
}
