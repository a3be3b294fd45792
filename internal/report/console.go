package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/payout"
	"github.com/payrecon-dev/payrecon/internal/settle"
)

var (
	heading = color.New(color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
)

// count picks green for zero problems and the given colour otherwise.
func count(w io.Writer, label string, n int, problem *color.Color) {
	c := good
	if n > 0 {
		c = problem
	}
	fmt.Fprintf(w, "  %-22s ", label)
	c.Fprintf(w, "%d\n", n)
}

// PrintOverview writes the ledger overview.
func PrintOverview(w io.Writer, name string, ov payout.LedgerOverview) {
	heading.Fprintf(w, "Ledger %s: %d rows\n", name, ov.Rows)
	for _, st := range ov.Statuses {
		fmt.Fprintf(w, "  %-22s %5d  amount %s  disbursed %s\n", st.Status, st.Count, money(st.Amount), money(st.Disbursed))
	}
	for _, m := range ov.Methods {
		fmt.Fprintf(w, "  %-8s %-12s %5d  disbursed %s\n", m.Category, m.Method, m.Count, money(m.Disbursed))
	}
	if !ov.Disbursed.From.IsZero() {
		fmt.Fprintf(w, "  disbursed %s to %s\n", stamp(ov.Disbursed.From), stamp(ov.Disbursed.To))
	}
}

// PrintResult writes the summary of one section.
func PrintResult(w io.Writer, res model.Result) {
	s := res.Summary
	heading.Fprintf(w, "%s\n", res.Category)
	count(w, "Matched", s.Matched, good)
	count(w, "Amount differences", s.Discrepant, bad)
	count(w, "Ledger only", s.AuthoritativeOnly, warn)
	count(w, "Pasted only", s.ReportedOnly, warn)
	fmt.Fprintf(w, "  %-22s %d (%s)\n", "Ledger records", s.TotalAuthoritative, money(s.AuthoritativeTotal))
	fmt.Fprintf(w, "  %-22s %d (%s)\n", "Pasted records", s.TotalReported, money(s.ReportedTotal))
	for _, m := range res.Discrepant {
		bad.Fprintf(w, "    %-30s ledger %s pasted %s diff %s\n", m.Key, money(m.LedgerAmount), money(m.ReportedAmount), money(m.Difference))
	}
}

// PrintMaster writes the combined summary of every completed section.
func PrintMaster(w io.Writer, m payout.MasterSummary) {
	heading.Fprintln(w, "Master summary")
	for _, c := range model.Categories {
		state := warn.Sprint("pending")
		if m.Completed[c] {
			state = good.Sprint("done")
		}
		fmt.Fprintf(w, "  %-22s %s\n", c, state)
	}
	count(w, "Matched", m.Counts.Matched, good)
	count(w, "Amount differences", m.Counts.Discrepant, bad)
	count(w, "Ledger only", m.Counts.AuthoritativeOnly, warn)
	count(w, "Pasted only", m.Counts.ReportedOnly, warn)
}

// PrintSettlement writes the run report of a settlement.
func PrintSettlement(w io.Writer, feed string, out settle.Outcome) {
	rep := out.Report
	heading.Fprintf(w, "%s: %d provider rows, %d order rows\n", feed, rep.PSPRows, rep.OrderRows)
	count(w, "Outside window", rep.OutOfWindow, warn)
	count(w, "Excluded by filter", rep.Filtered, warn)
	count(w, "Over max amount", rep.OverMax, warn)
	count(w, "Duplicates dropped", rep.DuplicatesDropped, warn)
	count(w, "Duplicates kept", rep.DuplicatesFlagged, warn)
	count(w, "Orders blank", rep.OrderBlank, warn)
	count(w, "Orders duplicated", rep.OrderDuplicates, warn)
	count(w, "Amount mismatches", len(rep.Mismatches), bad)
	for _, r := range rep.Mismatches {
		bad.Fprintf(w, "    %-30s provider %s order %s\n", r.PSP.ID, money(r.PSP.Amount), money(r.GrandTotal))
	}
	count(w, "Blank ids", rep.BlankID, warn)
	count(w, "Unmatched to catch-all", rep.CatchAll, warn)
	fmt.Fprintf(w, "  %-22s %d (CFD %d, Futures %d)\n", "Final total", rep.FinalTotal, len(out.CFD), len(out.Futures))
	for _, l := range out.Revenue {
		fmt.Fprintf(w, "  %s %-8s %12s\n", l.Date.Format(dateFormat), l.Category, money(l.Revenue))
	}
}
