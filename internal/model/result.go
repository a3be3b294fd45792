package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchRecord is a flat comparison row for one join key present on both sides.
type MatchRecord struct {
	Method          Method
	Key             Key
	Email           string
	Logins          string // contributing ledger logins, comma separated
	LedgerAmount    decimal.Decimal
	ReportedAmount  decimal.Decimal
	Difference      decimal.Decimal // LedgerAmount - ReportedAmount; zero when matched
	Proof           string
	Status          string
	RequestedAt     time.Time
	ApprovedAt      time.Time
	DisbursedAt     time.Time
	LedgerRecords   int
	ReportedRecords int
}

// Counts rolls up a reconciliation result for reporting.
type Counts struct {
	Category           Category
	Matched            int
	AuthoritativeOnly  int
	ReportedOnly       int
	Discrepant         int
	TotalAuthoritative int
	TotalReported      int
	AuthoritativeTotal decimal.Decimal
	ReportedTotal      decimal.Decimal
}

// Result is the outcome of one section run. It is built once and not mutated.
type Result struct {
	Category          Category
	Matched           []MatchRecord
	Discrepant        []MatchRecord
	AuthoritativeOnly []AuthoritativeRecord
	ReportedOnly      []ParsedRecord
	Summary           Counts
}
