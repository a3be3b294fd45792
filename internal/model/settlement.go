package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DuplicatePolicy decides what happens to rows sharing a natural id.
type DuplicatePolicy string

const (
	// DuplicateDropAll removes every copy of a duplicated id.
	DuplicateDropAll DuplicatePolicy = "drop_all"
	// DuplicateRetainFlag keeps all copies for revenue and only flags them.
	DuplicateRetainFlag DuplicatePolicy = "retain_flag"
)

// PSPRow is one settlement row reported by a payment service provider.
type PSPRow struct {
	Row       int
	ID        string
	Amount    decimal.Decimal
	Time      time.Time
	Duplicate bool
	Cells     []string // raw cells aligned with the source header
}

// OrderRow is one row of an order list.
type OrderRow struct {
	Row        int
	ID         string
	PlanType   string
	GrandTotal decimal.Decimal
	UpdatedAt  time.Time
}

// SettledRow is a PSP row after joining with the order list.
type SettledRow struct {
	PSP        PSPRow
	PlanType   string
	GrandTotal decimal.Decimal
	Category   string
	Date       time.Time // settlement day after the revenue timezone shift
	Mismatch   bool
	CatchAll   bool
}

// RevenueLine is the revenue of one category on one settlement day.
type RevenueLine struct {
	Date     time.Time
	Category string
	Revenue  decimal.Decimal
	Rows     int
}
