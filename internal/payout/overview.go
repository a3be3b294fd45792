package payout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/section"
)

// MethodOther labels ledger rows whose payment method belongs to neither join.
const MethodOther = "Other"

// MethodTotal is the disbursed volume of one category and payment method.
type MethodTotal struct {
	Category  model.Category
	Method    string
	Count     int
	Disbursed decimal.Decimal
}

// StatusTotal is the volume of one ledger status.
type StatusTotal struct {
	Status    string
	Count     int
	Amount    decimal.Decimal
	Disbursed decimal.Decimal
}

// TimeRange is the earliest and latest non-zero time seen.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (tr *TimeRange) add(t time.Time) {
	if t.IsZero() {
		return
	}
	if tr.From.IsZero() || t.Before(tr.From) {
		tr.From = t
	}
	if tr.To.IsZero() || t.After(tr.To) {
		tr.To = t
	}
}

// LedgerOverview describes an uploaded ledger before any reconciliation.
type LedgerOverview struct {
	Rows      int
	Methods   []MethodTotal
	Statuses  []StatusTotal
	Approved  TimeRange
	Disbursed TimeRange
}

// Overview summarizes records. Statuses cover every row; the method totals
// and time ranges cover disbursed rows only.
func Overview(records []model.AuthoritativeRecord, rules section.Rules) LedgerOverview {
	ov := LedgerOverview{Rows: len(records)}

	statusIdx := make(map[string]int)
	for _, r := range records {
		i, ok := statusIdx[r.Status]
		if !ok {
			i = len(ov.Statuses)
			statusIdx[r.Status] = i
			ov.Statuses = append(ov.Statuses, StatusTotal{Status: r.Status})
		}
		st := &ov.Statuses[i]
		st.Count++
		st.Amount = st.Amount.Add(r.Amount)
		st.Disbursed = st.Disbursed.Add(r.DisbursedAmount)
	}

	type bucket struct {
		category model.Category
		method   string
	}
	methodIdx := make(map[bucket]int)
	for _, r := range section.Disbursed(records, rules) {
		b := bucket{rules.CategoryOf(r.Plan), methodLabel(r.PaymentMethod, rules)}
		i, ok := methodIdx[b]
		if !ok {
			i = len(ov.Methods)
			methodIdx[b] = i
			ov.Methods = append(ov.Methods, MethodTotal{Category: b.category, Method: b.method})
		}
		mt := &ov.Methods[i]
		mt.Count++
		mt.Disbursed = mt.Disbursed.Add(r.DisbursedAmount)
		ov.Approved.add(r.ApprovedAt)
		ov.Disbursed.add(r.DisbursedAt)
	}
	return ov
}

func methodLabel(label string, rules section.Rules) string {
	switch {
	case rules.Matches(label, model.MethodEmail):
		return model.MethodEmail.Label()
	case rules.Matches(label, model.MethodID):
		return model.MethodID.Label()
	}
	return MethodOther
}
