package schema

import (
	"fmt"
	"strings"

	"github.com/payrecon-dev/payrecon/internal/importer"
	"github.com/payrecon-dev/payrecon/internal/model"
)

// Default order list column names.
const (
	ColOrderID    = "Transaction ID"
	ColOrderTime  = "Updated At"
	ColOrderPlan  = "Plan Type"
	ColOrderTotal = "Grand Total"
	ColGateway    = "Gateway"
)

// PSPLayout names the columns of one provider export.
type PSPLayout struct {
	ID     string
	Amount string
	// Rate, when set, multiplies Amount into the settled amount.
	Rate string
	Time string
	// Gateway, when set, must equal every value of the gateway column.
	Gateway         string
	GatewayRequired bool
	// Extra columns that must be present, such as filter columns.
	Extra []string
}

// OrderLayout names the columns of an order list.
type OrderLayout struct {
	ID      string
	Gateway string
}

// PSP reads a provider export. Rows with an unreadable time keep a zero time
// and therefore fall outside any window.
func PSP(t *importer.Table, l PSPLayout) ([]model.PSPRow, error) {
	required := []string{l.ID, l.Amount, l.Time}
	if l.Rate != "" {
		required = append(required, l.Rate)
	}
	if l.GatewayRequired {
		required = append(required, ColGateway)
	}
	required = append(required, l.Extra...)
	if missing := t.Missing(required...); len(missing) > 0 {
		return nil, ValidationError{Source: t.Name, Missing: missing}
	}
	if err := checkGateway(t, l.Gateway); err != nil {
		return nil, err
	}

	idCol, amountCol, timeCol := t.Column(l.ID), t.Column(l.Amount), t.Column(l.Time)
	rateCol := -1
	if l.Rate != "" {
		rateCol = t.Column(l.Rate)
	}

	rows := make([]model.PSPRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		amount, err := ParseAmount(row[amountCol])
		if err != nil {
			return nil, ValidationError{Source: t.Name, Detail: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		if rateCol >= 0 {
			rate, err := ParseAmount(row[rateCol])
			if err != nil {
				return nil, ValidationError{Source: t.Name, Detail: fmt.Sprintf("row %d: %v", i+2, err)}
			}
			amount = amount.Mul(rate)
		}
		ts, _ := ParseTime(row[timeCol])
		rows = append(rows, model.PSPRow{
			Row:    i + 1,
			ID:     ID(row[idCol]),
			Amount: amount,
			Time:   ts,
			Cells:  row,
		})
	}
	return rows, nil
}

// Orders reads an order list.
func Orders(t *importer.Table, l OrderLayout) ([]model.OrderRow, error) {
	idName := l.ID
	if idName == "" {
		idName = ColOrderID
	}
	if missing := t.Missing(idName, ColOrderTime, ColOrderPlan, ColOrderTotal); len(missing) > 0 {
		return nil, ValidationError{Source: t.Name, Missing: missing}
	}
	if err := checkGateway(t, l.Gateway); err != nil {
		return nil, err
	}

	idCol, timeCol := t.Column(idName), t.Column(ColOrderTime)
	planCol, totalCol := t.Column(ColOrderPlan), t.Column(ColOrderTotal)

	rows := make([]model.OrderRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		total, err := ParseAmount(row[totalCol])
		if err != nil {
			return nil, ValidationError{Source: t.Name, Detail: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		updated, _ := ParseTime(row[timeCol])
		rows = append(rows, model.OrderRow{
			Row:        i + 1,
			ID:         ID(row[idCol]),
			PlanType:   strings.TrimSpace(row[planCol]),
			GrandTotal: total,
			UpdatedAt:  updated,
		})
	}
	return rows, nil
}

// checkGateway rejects a table whose gateway column names another gateway.
// A table without the column passes.
func checkGateway(t *importer.Table, gateway string) error {
	col := t.Column(ColGateway)
	if gateway == "" || col < 0 {
		return nil
	}
	for i, row := range t.Rows {
		if got := strings.TrimSpace(row[col]); !strings.EqualFold(got, gateway) {
			return ValidationError{
				Source: t.Name,
				Detail: fmt.Sprintf("row %d: gateway %q, want %q", i+2, got, gateway),
			}
		}
	}
	return nil
}
