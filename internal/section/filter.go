package section

import (
	"strings"

	"github.com/payrecon-dev/payrecon/internal/model"
)

// Rules holds the case-insensitive substrings used to classify ledger rows.
type Rules struct {
	FuturesToken string
	StatusToken  string
	EmailTokens  []string
	IDTokens     []string
}

// DefaultRules returns the tokens used by the payout ledger export.
func DefaultRules() Rules {
	return Rules{
		FuturesToken: "futures",
		StatusToken:  "disbursed",
		EmailTokens:  []string{"riseworks"},
		IDTokens:     []string{"usdc", "usdt"},
	}
}

// Signals is the set of methods present in the reported data.
type Signals map[model.Method]bool

// SignalsOf returns the methods that produced at least one record.
func SignalsOf(records []model.ParsedRecord) Signals {
	s := make(Signals)
	for _, r := range records {
		s[r.Method] = true
	}
	return s
}

// CategoryOf classifies a plan name. Anything not naming futures, including a
// blank plan, is Forex.
func (r Rules) CategoryOf(plan string) model.Category {
	if containsFold(plan, r.FuturesToken) {
		return model.CategoryFutures
	}
	return model.CategoryForex
}

// Matches reports whether a payment method label belongs to method m.
func (r Rules) Matches(label string, m model.Method) bool {
	tokens := r.IDTokens
	if m == model.MethodEmail {
		tokens = r.EmailTokens
	}
	for _, tok := range tokens {
		if containsFold(label, tok) {
			return true
		}
	}
	return false
}

// Filter returns the records of category whose payment method label matches a
// method present in signals, in source order. With no signals the result is
// empty, so nothing on the ledger side can be matched by accident.
func Filter(records []model.AuthoritativeRecord, category model.Category, signals Signals, rules Rules) []model.AuthoritativeRecord {
	var out []model.AuthoritativeRecord
	for _, rec := range records {
		if rules.CategoryOf(rec.Plan) != category {
			continue
		}
		for m, present := range signals {
			if present && rules.Matches(rec.PaymentMethod, m) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// Disbursed returns the records whose status contains the status token.
func Disbursed(records []model.AuthoritativeRecord, rules Rules) []model.AuthoritativeRecord {
	var out []model.AuthoritativeRecord
	for _, rec := range records {
		if containsFold(rec.Status, rules.StatusToken) {
			out = append(out, rec)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
