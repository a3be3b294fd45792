package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the two mutually exclusive plan sections of the ledger.
type Category string

const (
	CategoryForex   Category = "Forex"
	CategoryFutures Category = "Futures"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryForex, CategoryFutures}

// AuthoritativeRecord is one row of the uploaded payout ledger.
type AuthoritativeRecord struct {
	Row             int // 1-based data row in the source file
	ID              string
	Email           string
	Plan            string
	Amount          decimal.Decimal
	DisbursedAmount decimal.Decimal
	PaymentMethod   string
	Proof           string
	Status          string
	RequestedAt     time.Time
	ApprovedAt      time.Time
	DisbursedAt     time.Time
}

// EmailKey returns the normalized email join key.
func (r AuthoritativeRecord) EmailKey() Key { return NewKey(r.Email) }

// IDKey returns the normalized login join key.
func (r AuthoritativeRecord) IDKey() Key { return NewKey(r.ID) }
