package model

import "github.com/shopspring/decimal"

// Method identifies the reporting convention a pasted line follows.
type Method string

const (
	// MethodEmail lines carry "<ids> <amount> <email>" and are joined on email
	// (Riseworks-style payouts).
	MethodEmail Method = "email"
	// MethodID lines carry "<id> <amount>" and are joined on the login id
	// (ALT/crypto payouts).
	MethodID Method = "id"
)

// Label returns the name used in reports.
func (m Method) Label() string {
	switch m {
	case MethodEmail:
		return "Riseworks"
	case MethodID:
		return "ALT"
	default:
		return string(m)
	}
}

// ParsedRecord is one normalized row produced from pasted text.
type ParsedRecord struct {
	Identity string
	Amount   decimal.Decimal
	Email    string // empty for MethodID rows
	Method   Method
}

// Key returns the join key for the record's method.
func (p ParsedRecord) Key() Key {
	if p.Method == MethodEmail {
		return NewKey(p.Email)
	}
	return NewKey(p.Identity)
}
