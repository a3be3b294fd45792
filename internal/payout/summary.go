package payout

import (
	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/model"
)

// Summarize rolls up a result. The totals cover every ledger row and reported
// record that entered the run.
func Summarize(res model.Result, ledger []model.AuthoritativeRecord, reported []model.ParsedRecord) model.Counts {
	c := model.Counts{
		Category:           res.Category,
		Matched:            len(res.Matched),
		Discrepant:         len(res.Discrepant),
		AuthoritativeOnly:  len(res.AuthoritativeOnly),
		ReportedOnly:       len(res.ReportedOnly),
		TotalAuthoritative: len(ledger),
		TotalReported:      len(reported),
	}
	for _, r := range ledger {
		c.AuthoritativeTotal = c.AuthoritativeTotal.Add(r.DisbursedAmount)
	}
	for _, r := range reported {
		c.ReportedTotal = c.ReportedTotal.Add(r.Amount)
	}
	return c
}

// Add sums two count sets element-wise. The category is left blank.
func Add(a, b model.Counts) model.Counts {
	return model.Counts{
		Matched:            a.Matched + b.Matched,
		AuthoritativeOnly:  a.AuthoritativeOnly + b.AuthoritativeOnly,
		ReportedOnly:       a.ReportedOnly + b.ReportedOnly,
		Discrepant:         a.Discrepant + b.Discrepant,
		TotalAuthoritative: a.TotalAuthoritative + b.TotalAuthoritative,
		TotalReported:      a.TotalReported + b.TotalReported,
		AuthoritativeTotal: a.AuthoritativeTotal.Add(b.AuthoritativeTotal),
		ReportedTotal:      a.ReportedTotal.Add(b.ReportedTotal),
	}
}

// MasterSummary combines the results of every completed category.
type MasterSummary struct {
	Counts    model.Counts
	Completed map[model.Category]bool
}

// Complete reports whether every category has a result.
func (m MasterSummary) Complete() bool {
	for _, c := range model.Categories {
		if !m.Completed[c] {
			return false
		}
	}
	return true
}

// Master adds up the summaries of the given results.
func Master(results map[model.Category]model.Result) MasterSummary {
	m := MasterSummary{
		Counts:    model.Counts{AuthoritativeTotal: decimal.Zero, ReportedTotal: decimal.Zero},
		Completed: make(map[model.Category]bool),
	}
	for _, c := range model.Categories {
		res, ok := results[c]
		if !ok {
			continue
		}
		m.Counts = Add(m.Counts, res.Summary)
		m.Completed[c] = true
	}
	return m
}
