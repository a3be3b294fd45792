package settle

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/group"
	"github.com/payrecon-dev/payrecon/internal/model"
)

// Default labels used when Options leaves them blank.
const (
	DefaultCatchAll     = "CFD (Unmatched PSP)"
	DefaultFuturesToken = "futures"
	DefaultFuturesLabel = "Futures"
	DefaultCFDLabel     = "CFD"
)

// DefaultRevenueShift moves provider times onto the settlement day.
const DefaultRevenueShift = 6 * time.Hour

const noneOrderID = "none"

// Rule keeps PSP rows whose Column equals Value, ignoring case. Negate keeps
// the rows that differ instead.
type Rule struct {
	Column string
	Value  string
	Negate bool
}

// Options configures one run.
type Options struct {
	PSPWindow   Window
	OrderWindow Window
	Rules       []Rule
	// MaxAmount excludes PSP rows above it. Zero disables the check.
	MaxAmount       decimal.Decimal
	Duplicates      model.DuplicatePolicy
	BlankIDCategory string // plan for PSP rows without an id; blank sends them to CatchAll
	CatchAll        string
	FuturesToken    string
	FuturesLabel    string
	CFDLabel        string
	RevenueShift    time.Duration
}

// Input is the parsed data of one run. Header names the PSP cells and is
// used to evaluate the rules.
type Input struct {
	Header []string
	PSP    []model.PSPRow
	Orders []model.OrderRow
}

// Report counts what each step of a run did.
type Report struct {
	PSPRows           int
	OutOfWindow       int
	Filtered          int
	OverMax           int
	DuplicatesDropped int
	DuplicatesFlagged int
	OrderRows         int
	OrderBlank        int
	OrderDuplicates   int
	OrderOutOfWindow  int
	Joined            int
	Mismatches        []model.SettledRow
	BlankID           int
	CatchAll          int
	FinalTotal        int
}

// Outcome is the result of one run.
type Outcome struct {
	Header  []string
	CFD     []model.SettledRow
	Futures []model.SettledRow
	Revenue []model.RevenueLine
	Report  Report
}

// Rows returns every settled row, CFD first.
func (o Outcome) Rows() []model.SettledRow {
	return append(append([]model.SettledRow{}, o.CFD...), o.Futures...)
}

func (o Options) withDefaults() Options {
	if o.CatchAll == "" {
		o.CatchAll = DefaultCatchAll
	}
	if o.FuturesToken == "" {
		o.FuturesToken = DefaultFuturesToken
	}
	if o.FuturesLabel == "" {
		o.FuturesLabel = DefaultFuturesLabel
	}
	if o.CFDLabel == "" {
		o.CFDLabel = DefaultCFDLabel
	}
	if o.Duplicates == "" {
		o.Duplicates = model.DuplicateDropAll
	}
	return o
}

func pspKey(r model.PSPRow) model.Key     { return model.ExactKey(r.ID) }
func orderKey(r model.OrderRow) model.Key { return model.ExactKey(r.ID) }

// Run reconciles in.PSP against in.Orders by exact transaction id. Each source
// is cut to its own window since the provider and the order system close their
// days at different hours. Provider rows without an order are kept under the
// catch-all plan, so revenue covers every provider row in the window.
func Run(in Input, opts Options) Outcome {
	opts = opts.withDefaults()
	rep := Report{PSPRows: len(in.PSP), OrderRows: len(in.Orders)}

	psp := cleanPSP(in, opts, &rep)
	orders := cleanOrders(in.Orders, opts, &rep)

	var blank []model.PSPRow
	if opts.BlankIDCategory != "" {
		var withID []model.PSPRow
		for _, r := range psp {
			if pspKey(r).IsZero() {
				blank = append(blank, r)
				continue
			}
			withID = append(withID, r)
		}
		psp = withID
	}

	byID := make(map[model.Key]model.OrderRow, len(orders))
	for _, o := range orders {
		byID[orderKey(o)] = o
	}

	var rows []model.SettledRow
	for _, r := range psp {
		o, ok := byID[pspKey(r)]
		if !ok {
			continue
		}
		row := model.SettledRow{PSP: r, PlanType: o.PlanType, GrandTotal: o.GrandTotal}
		if !r.Amount.Equal(o.GrandTotal) {
			row.Mismatch = true
			rep.Mismatches = append(rep.Mismatches, row)
		}
		rows = append(rows, row)
		rep.Joined++
	}
	for _, r := range blank {
		rows = append(rows, model.SettledRow{PSP: r, PlanType: opts.BlankIDCategory, GrandTotal: r.Amount, CatchAll: true})
		rep.BlankID++
	}
	for _, r := range psp {
		if _, ok := byID[pspKey(r)]; ok {
			continue
		}
		rows = append(rows, model.SettledRow{PSP: r, PlanType: opts.CatchAll, GrandTotal: r.Amount, CatchAll: true})
		rep.CatchAll++
	}
	rep.FinalTotal = len(rows)

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PSP.Time.Before(rows[j].PSP.Time) })

	out := Outcome{Header: in.Header, Report: rep}
	for _, row := range rows {
		row.Date = Day(row.PSP.Time, opts.RevenueShift)
		if IsFutures(row.PlanType, opts.FuturesToken) {
			row.Category = opts.FuturesLabel
			out.Futures = append(out.Futures, row)
		} else {
			row.Category = opts.CFDLabel
			out.CFD = append(out.CFD, row)
		}
	}
	out.Revenue = Revenue(out.Rows())
	return out
}

// IsFutures reports whether a plan type contains token, ignoring case.
func IsFutures(plan, token string) bool {
	return token != "" && strings.Contains(strings.ToLower(plan), strings.ToLower(token))
}

func cleanPSP(in Input, opts Options, rep *Report) []model.PSPRow {
	rules := compile(in.Header, opts.Rules)
	var kept []model.PSPRow
	for _, r := range in.PSP {
		switch {
		case !opts.PSPWindow.Contains(r.Time):
			rep.OutOfWindow++
		case !rules.keep(r):
			rep.Filtered++
		case opts.MaxAmount.IsPositive() && r.Amount.GreaterThan(opts.MaxAmount):
			rep.OverMax++
		default:
			kept = append(kept, r)
		}
	}

	if opts.Duplicates == model.DuplicateRetainFlag {
		for i, dup := range group.FlagDuplicates(kept, pspKey) {
			if dup {
				kept[i].Duplicate = true
				rep.DuplicatesFlagged++
			}
		}
		return kept
	}
	kept, dropped := group.DropDuplicates(kept, pspKey)
	rep.DuplicatesDropped = len(dropped)
	return kept
}

func cleanOrders(orders []model.OrderRow, opts Options, rep *Report) []model.OrderRow {
	var inWindow []model.OrderRow
	for _, o := range orders {
		id := strings.TrimSpace(o.ID)
		switch {
		case id == "" || strings.EqualFold(id, noneOrderID):
			rep.OrderBlank++
		case !opts.OrderWindow.Contains(o.UpdatedAt):
			rep.OrderOutOfWindow++
		default:
			inWindow = append(inWindow, o)
		}
	}
	kept, dropped := group.DropDuplicates(inWindow, orderKey)
	rep.OrderDuplicates = len(dropped)
	return kept
}

type compiledRule struct {
	index int
	Rule
}

type ruleSet []compiledRule

// compile resolves rule columns against header. A rule whose column is absent
// rejects every row.
func compile(header []string, rules []Rule) ruleSet {
	var rs ruleSet
	for _, r := range rules {
		idx := -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), r.Column) {
				idx = i
				break
			}
		}
		rs = append(rs, compiledRule{index: idx, Rule: r})
	}
	return rs
}

func (rs ruleSet) keep(r model.PSPRow) bool {
	for _, cr := range rs {
		if cr.index < 0 || cr.index >= len(r.Cells) {
			return false
		}
		eq := strings.EqualFold(strings.TrimSpace(r.Cells[cr.index]), cr.Value)
		if eq == cr.Negate {
			return false
		}
	}
	return true
}

// Revenue sums PSP amounts per settlement day and category, ordered by day
// and then by category name.
func Revenue(rows []model.SettledRow) []model.RevenueLine {
	type bucket struct {
		day      int64
		category string
	}
	idx := make(map[bucket]int)
	var lines []model.RevenueLine
	for _, r := range rows {
		b := bucket{r.Date.Unix(), r.Category}
		i, ok := idx[b]
		if !ok {
			i = len(lines)
			idx[b] = i
			lines = append(lines, model.RevenueLine{Date: r.Date, Category: r.Category})
		}
		lines[i].Revenue = lines[i].Revenue.Add(r.PSP.Amount)
		lines[i].Rows++
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].Category < lines[j].Category
	})
	return lines
}
