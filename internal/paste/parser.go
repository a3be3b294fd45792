package paste

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/model"
)

// Stats describes how many lines a Parse call consumed and skipped.
type Stats struct {
	Lines   int // non-blank lines seen
	Skipped int // lines that produced nothing
}

var decimalToken = regexp.MustCompile(`^(?:[0-9][0-9,]*\.[0-9]*|\.[0-9]+)$`)

const currencySymbols = "$€£"

// emailGroup accumulates every email-keyed line declaring the same email.
type emailGroup struct {
	email  string
	total  decimal.Decimal
	ids    []string
	seenID map[string]bool
}

// Parse reads pasted text and returns the records it contains, or nil when no
// line parses. Two line shapes are recognized:
//
//	<id>[, <id>...] <amount> <email>   email-keyed (MethodEmail)
//	<id> <amount>                      id-keyed (MethodID)
//
// Any other line, or one whose amount does not parse, is skipped.
//
// Email-keyed lines are grouped by email: amounts are summed and the total is
// split evenly across the distinct ids declared for that email, in first-seen
// order. The split depends on which ids share an email, so reordering lines
// never changes amounts but adding an id to an email changes every share.
// An id declared under two different emails yields one record per email.
//
// Id-keyed lines are emitted one record per line, after all email-keyed
// records.
func Parse(text string) ([]model.ParsedRecord, Stats) {
	var stats Stats
	var groups []*emailGroup
	byEmail := make(map[string]*emailGroup)
	var idRecords []model.ParsedRecord

	for _, line := range strings.Split(text, "\n") {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		stats.Lines++

		switch {
		case len(tokens) >= 3 && hasEmail(tokens):
			ids, amount, email, ok := parseEmailLine(tokens)
			if !ok {
				stats.Skipped++
				continue
			}
			g, seen := byEmail[email]
			if !seen {
				g = &emailGroup{email: email, seenID: make(map[string]bool)}
				byEmail[email] = g
				groups = append(groups, g)
			}
			g.total = g.total.Add(amount)
			for _, id := range ids {
				if !g.seenID[id] {
					g.seenID[id] = true
					g.ids = append(g.ids, id)
				}
			}

		case len(tokens) == 2:
			amount, err := ParseAmount(tokens[1])
			if err != nil {
				stats.Skipped++
				continue
			}
			idRecords = append(idRecords, model.ParsedRecord{
				Identity: tokens[0],
				Amount:   amount,
				Method:   model.MethodID,
			})

		default:
			stats.Skipped++
		}
	}

	var records []model.ParsedRecord
	for _, g := range groups {
		share := g.total.Div(decimal.NewFromInt(int64(len(g.ids))))
		for _, id := range g.ids {
			records = append(records, model.ParsedRecord{
				Identity: id,
				Amount:   share,
				Email:    g.email,
				Method:   model.MethodEmail,
			})
		}
	}
	records = append(records, idRecords...)

	if len(records) == 0 {
		return nil, stats
	}
	return records, stats
}

// ParseAmount parses an amount cell, tolerating a leading currency symbol and
// thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, currencySymbols)
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}

func hasEmail(tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(tok, "@") {
			return true
		}
	}
	return false
}

// parseEmailLine locates the amount (the first currency or decimal token
// before the email) and the email (the first token containing "@"). Every
// token before the amount is the id field, which may list several ids
// separated by commas. A line with no id is rejected.
func parseEmailLine(tokens []string) (ids []string, amount decimal.Decimal, email string, ok bool) {
	amountIdx, emailIdx := -1, -1
	for i, tok := range tokens {
		if strings.Contains(tok, "@") {
			emailIdx = i
			break
		}
		if amountIdx < 0 && isAmountToken(tok) {
			amountIdx = i
		}
	}
	if amountIdx < 0 || emailIdx < 0 {
		return nil, decimal.Zero, "", false
	}

	amount, err := ParseAmount(tokens[amountIdx])
	if err != nil {
		return nil, decimal.Zero, "", false
	}

	field := strings.Join(tokens[:amountIdx], " ")
	for _, id := range strings.Split(field, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, decimal.Zero, "", false
	}
	return ids, amount, tokens[emailIdx], true
}

func isAmountToken(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return strings.ContainsRune(currencySymbols, r) || decimalToken.MatchString(tok)
}
