package schema

import (
	"fmt"

	"github.com/payrecon-dev/payrecon/internal/importer"
	"github.com/payrecon-dev/payrecon/internal/model"
)

// Ledger column names.
const (
	ColLogin           = "Login"
	ColEmail           = "Customer Email"
	ColPlan            = "Plan"
	ColAmount          = "Amount"
	ColDisbursedAmount = "Disbursement Amount"
	ColPaymentMethod   = "Payment Method"
	ColProof           = "Proof"
	ColStatus          = "Status"
	ColRequestedTime   = "Requested Time"
	ColApprovedTime    = "Approved Time"
	ColDisbursedTime   = "Disbursed Time"
)

// LedgerColumns lists every column a ledger upload must carry.
var LedgerColumns = []string{
	ColLogin, ColEmail, ColPlan, ColAmount, ColDisbursedAmount, ColPaymentMethod,
	ColProof, ColStatus, ColRequestedTime, ColApprovedTime, ColDisbursedTime,
}

// Ledger reads every row of a payout ledger. Unreadable timestamps are left
// zero; an unreadable amount fails the file.
func Ledger(t *importer.Table) ([]model.AuthoritativeRecord, error) {
	if missing := t.Missing(LedgerColumns...); len(missing) > 0 {
		return nil, ValidationError{Source: t.Name, Missing: missing}
	}
	col := make(map[string]int, len(LedgerColumns))
	for _, c := range LedgerColumns {
		col[c] = t.Column(c)
	}

	records := make([]model.AuthoritativeRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		amount, err := ParseAmount(row[col[ColAmount]])
		if err != nil {
			return nil, ValidationError{Source: t.Name, Detail: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		disbursed, err := ParseAmount(row[col[ColDisbursedAmount]])
		if err != nil {
			return nil, ValidationError{Source: t.Name, Detail: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		requested, _ := ParseTime(row[col[ColRequestedTime]])
		approved, _ := ParseTime(row[col[ColApprovedTime]])
		disbursedAt, _ := ParseTime(row[col[ColDisbursedTime]])

		records = append(records, model.AuthoritativeRecord{
			Row:             i + 1,
			ID:              ID(row[col[ColLogin]]),
			Email:           row[col[ColEmail]],
			Plan:            row[col[ColPlan]],
			Amount:          amount,
			DisbursedAmount: disbursed,
			PaymentMethod:   row[col[ColPaymentMethod]],
			Proof:           row[col[ColProof]],
			Status:          row[col[ColStatus]],
			RequestedAt:     requested,
			ApprovedAt:      approved,
			DisbursedAt:     disbursedAt,
		})
	}
	return records, nil
}
