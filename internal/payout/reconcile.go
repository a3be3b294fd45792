package payout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/group"
	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/section"
)

var tolerance = decimal.New(1, -2)

// Tolerance returns the largest absolute difference still classified as
// matched: one cent.
func Tolerance() decimal.Decimal { return tolerance }

// Classify compares a ledger amount with a reported amount. The difference is
// ledger minus reported and is zero when the amounts match.
func Classify(ledger, reported decimal.Decimal) (difference decimal.Decimal, matched bool) {
	d := ledger.Sub(reported)
	if d.Abs().LessThanOrEqual(tolerance) {
		return decimal.Zero, true
	}
	return d, false
}

// Reconcile runs both joins over filtered, the ledger rows already narrowed to
// category by section.Filter, and reported, the parsed records of the run.
//
// Each ledger row takes part in one join only, chosen by its payment method
// label: email-method rows are grouped by email, id-method rows by login. A
// customer paid partly by each method is therefore compared per method, so
// Riseworks 100 and USDT 50 for e@x.com against a reported 100 by email match
// on the email join instead of showing 150 against 100. Every ledger row and
// every reported record lands in exactly one bucket of the result.
func Reconcile(category model.Category, filtered []model.AuthoritativeRecord, reported []model.ParsedRecord, rules section.Rules) model.Result {
	byEmail, byID := splitLedger(filtered, rules)
	var emailReported, idReported []model.ParsedRecord
	for _, r := range reported {
		if r.Method == model.MethodEmail {
			emailReported = append(emailReported, r)
		} else {
			idReported = append(idReported, r)
		}
	}

	res := model.Result{Category: category}
	emailKeys := join(&res, model.MethodEmail, byEmail, emailReported, model.AuthoritativeRecord.EmailKey)
	idKeys := join(&res, model.MethodID, byID, idReported, model.AuthoritativeRecord.IDKey)

	for _, rec := range filtered {
		if !emailKeys[rec.EmailKey()] && !idKeys[rec.IDKey()] {
			res.AuthoritativeOnly = append(res.AuthoritativeOnly, rec)
		}
	}
	for _, r := range reported {
		keys := idKeys
		if r.Method == model.MethodEmail {
			keys = emailKeys
		}
		if !keys[r.Key()] {
			res.ReportedOnly = append(res.ReportedOnly, r)
		}
	}
	res.Summary = Summarize(res, filtered, reported)
	return res
}

// splitLedger assigns each ledger row to the join of its payment method. A
// label matching both methods is joined by email.
func splitLedger(records []model.AuthoritativeRecord, rules section.Rules) (byEmail, byID []model.AuthoritativeRecord) {
	for _, rec := range records {
		switch {
		case rules.Matches(rec.PaymentMethod, model.MethodEmail):
			byEmail = append(byEmail, rec)
		case rules.Matches(rec.PaymentMethod, model.MethodID):
			byID = append(byID, rec)
		}
	}
	return byEmail, byID
}

// join compares the grouped ledger rows with the grouped reported records of
// one method, appends the classified rows to res, and returns the joined keys.
func join(res *model.Result, method model.Method, ledger []model.AuthoritativeRecord, reported []model.ParsedRecord, key func(model.AuthoritativeRecord) model.Key) map[model.Key]bool {
	ledgerGroups := group.ByKey(ledger, key, func(r model.AuthoritativeRecord) decimal.Decimal { return r.DisbursedAmount })
	reportedGroups := group.ByKey(reported, model.ParsedRecord.Key, func(r model.ParsedRecord) decimal.Decimal { return r.Amount })

	joined := make(map[model.Key]bool)
	for _, k := range group.Intersect(ledgerGroups, reportedGroups) {
		lg, _ := ledgerGroups.Get(k)
		rg, _ := reportedGroups.Get(k)
		mr := matchRecord(method, lg, rg)
		if mr.Difference.IsZero() {
			res.Matched = append(res.Matched, mr)
		} else {
			res.Discrepant = append(res.Discrepant, mr)
		}
		joined[k] = true
	}
	return joined
}

func matchRecord(method model.Method, lg *group.Group[model.AuthoritativeRecord], rg *group.Group[model.ParsedRecord]) model.MatchRecord {
	members := lg.Members
	diff, _ := Classify(lg.Total, rg.Total)
	email := group.First(members, func(r model.AuthoritativeRecord) string { return r.Email })
	if email == "" {
		email = group.First(rg.Members, func(r model.ParsedRecord) string { return r.Email })
	}
	return model.MatchRecord{
		Method:          method,
		Key:             lg.Key,
		Email:           email,
		Logins:          strings.Join(group.Distinct(members, func(r model.AuthoritativeRecord) string { return r.ID }), ", "),
		LedgerAmount:    lg.Total,
		ReportedAmount:  rg.Total,
		Difference:      diff,
		Proof:           group.First(members, func(r model.AuthoritativeRecord) string { return r.Proof }),
		Status:          group.First(members, func(r model.AuthoritativeRecord) string { return r.Status }),
		RequestedAt:     firstTime(members, func(r model.AuthoritativeRecord) time.Time { return r.RequestedAt }),
		ApprovedAt:      firstTime(members, func(r model.AuthoritativeRecord) time.Time { return r.ApprovedAt }),
		DisbursedAt:     firstTime(members, func(r model.AuthoritativeRecord) time.Time { return r.DisbursedAt }),
		LedgerRecords:   len(members),
		ReportedRecords: len(rg.Members),
	}
}

func firstTime(members []model.AuthoritativeRecord, field func(model.AuthoritativeRecord) time.Time) time.Time {
	for _, m := range members {
		if t := field(m); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
