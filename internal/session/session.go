package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payrecon-dev/payrecon/internal/config"
	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/paste"
	"github.com/payrecon-dev/payrecon/internal/payout"
	"github.com/payrecon-dev/payrecon/internal/schema"
	"github.com/payrecon-dev/payrecon/internal/section"
	"github.com/payrecon-dev/payrecon/internal/settle"
)

// Session is not safe for concurrent use.
type Session struct {
	ID uuid.UUID

	cfg    *config.Config
	rules  section.Rules
	loader TableLoader
	base   *zap.Logger
	log    *zap.Logger

	ledgerName string
	ledger     []model.AuthoritativeRecord
	results    map[model.Category]model.Result

	reconcile func(model.Category, []model.AuthoritativeRecord, []model.ParsedRecord, section.Rules) model.Result
}

// New creates an empty session.
func New(cfg *config.Config, loader TableLoader, log *zap.Logger) *Session {
	s := &Session{
		cfg:       cfg,
		rules:     cfg.Payout.Rules(),
		loader:    loader,
		base:      log,
		reconcile: payout.Reconcile,
	}
	s.clear()
	return s
}

// Reset drops the ledger, every stored result and the loader cache, and
// starts a new session id.
func (s *Session) Reset() {
	s.loader.Reset()
	s.clear()
}

func (s *Session) clear() {
	s.ID = uuid.New()
	s.ledgerName = ""
	s.ledger = nil
	s.results = make(map[model.Category]model.Result)
	s.log = s.base.With(zap.String("session", s.ID.String()))
	s.log.Debug("session reset")
}

// LoadLedger reads the payout ledger at path and replaces any previous one.
// Results computed against the previous ledger are dropped.
func (s *Session) LoadLedger(ctx context.Context, path string) (payout.LedgerOverview, error) {
	t, err := s.loader.LoadTable(ctx, path)
	if err != nil {
		return payout.LedgerOverview{}, fmt.Errorf("loading ledger: %w", err)
	}
	records, err := schema.Ledger(t)
	if err != nil {
		return payout.LedgerOverview{}, fmt.Errorf("loading ledger: %w", err)
	}

	s.ledgerName = t.Name
	s.ledger = records
	s.results = make(map[model.Category]model.Result)

	ov := payout.Overview(records, s.rules)
	s.log.Info("ledger loaded",
		zap.String("file", t.Name),
		zap.Int("rows", len(records)),
		zap.Int("statuses", len(ov.Statuses)),
	)
	return ov, nil
}

// LedgerName returns the file name of the loaded ledger.
func (s *Session) LedgerName() string { return s.ledgerName }

// ProceedSection reconciles pasted text against the disbursed ledger rows of
// category and stores the result. On any error the stored results are left
// untouched.
func (s *Session) ProceedSection(category model.Category, text string) (model.Result, error) {
	if s.ledger == nil {
		return model.Result{}, ErrNoLedger
	}

	reported, stats := paste.Parse(text)
	s.log.Debug("pasted text parsed",
		zap.String("category", string(category)),
		zap.Int("lines", stats.Lines),
		zap.Int("skipped", stats.Skipped),
		zap.Int("records", len(reported)),
	)
	if len(reported) == 0 {
		return model.Result{}, ErrNoValidData
	}

	res, err := compute("reconciling", category, func() model.Result {
		disbursed := section.Disbursed(s.ledger, s.rules)
		filtered := section.Filter(disbursed, category, section.SignalsOf(reported), s.rules)
		s.log.Debug("ledger filtered",
			zap.String("category", string(category)),
			zap.Int("disbursed", len(disbursed)),
			zap.Int("in_section", len(filtered)),
		)
		return s.reconcile(category, filtered, reported, s.rules)
	})
	if err != nil {
		s.log.Error("section failed", zap.String("category", string(category)), zap.Error(err))
		return model.Result{}, err
	}

	s.results[category] = res
	s.log.Info("section reconciled",
		zap.String("category", string(category)),
		zap.Int("matched", res.Summary.Matched),
		zap.Int("discrepant", res.Summary.Discrepant),
		zap.Int("ledger_only", res.Summary.AuthoritativeOnly),
		zap.Int("pasted_only", res.Summary.ReportedOnly),
	)
	return res, nil
}

// Results returns the stored results in category order.
func (s *Session) Results() []model.Result {
	var out []model.Result
	for _, c := range model.Categories {
		if res, ok := s.results[c]; ok {
			out = append(out, res)
		}
	}
	return out
}

// Master combines the stored results.
func (s *Session) Master() payout.MasterSummary {
	return payout.Master(s.results)
}

// SettleRequest names the inputs of one settlement run. A zero Start or End
// defaults to the first or last day present in the provider export.
type SettleRequest struct {
	Feed   string
	PSP    string
	Orders []string
	Start  time.Time
	End    time.Time
}

// Settle reconciles a provider export against one or more order lists. The
// order lists are concatenated before cleaning.
func (s *Session) Settle(ctx context.Context, req SettleRequest) (settle.Outcome, error) {
	feed, err := s.cfg.Settlement.Feed(req.Feed)
	if err != nil {
		return settle.Outcome{}, err
	}
	if len(req.Orders) == 0 {
		return settle.Outcome{}, fmt.Errorf("feed %s: no order list given", feed.Name)
	}

	pspTable, err := s.loader.LoadTable(ctx, req.PSP)
	if err != nil {
		return settle.Outcome{}, fmt.Errorf("loading provider export: %w", err)
	}
	psp, err := schema.PSP(pspTable, feed.PSPLayout())
	if err != nil {
		return settle.Outcome{}, fmt.Errorf("loading provider export: %w", err)
	}

	var orders []model.OrderRow
	for _, path := range req.Orders {
		t, err := s.loader.LoadTable(ctx, path)
		if err != nil {
			return settle.Outcome{}, fmt.Errorf("loading order list: %w", err)
		}
		rows, err := schema.Orders(t, feed.OrderLayout())
		if err != nil {
			return settle.Outcome{}, fmt.Errorf("loading order list: %w", err)
		}
		s.log.Debug("order list loaded", zap.String("file", t.Name), zap.Int("rows", len(rows)))
		orders = append(orders, rows...)
	}
	if len(psp) == 0 {
		return settle.Outcome{}, ErrNoValidData
	}

	start, end := req.Start, req.End
	first, last := timeRange(psp)
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	s.log.Debug("settlement window", zap.Time("start", start), zap.Time("end", end))

	opts := s.cfg.Settlement.Options(feed, start, end)
	in := settle.Input{Header: pspTable.Header, PSP: psp, Orders: orders}
	out, err := compute("settling", "", func() settle.Outcome { return settle.Run(in, opts) })
	if err != nil {
		s.log.Error("settlement failed", zap.String("feed", feed.Name), zap.Error(err))
		return settle.Outcome{}, err
	}

	rep := out.Report
	s.log.Info("settlement reconciled",
		zap.String("feed", feed.Name),
		zap.String("run", uuid.NewString()),
		zap.Int("psp_rows", rep.PSPRows),
		zap.Int("out_of_window", rep.OutOfWindow),
		zap.Int("filtered", rep.Filtered),
		zap.Int("over_max", rep.OverMax),
		zap.Int("duplicates_dropped", rep.DuplicatesDropped),
		zap.Int("duplicates_flagged", rep.DuplicatesFlagged),
		zap.Int("mismatches", len(rep.Mismatches)),
		zap.Int("catch_all", rep.CatchAll),
		zap.Int("final_total", rep.FinalTotal),
	)
	return out, nil
}

// timeRange returns the earliest and latest provider times.
func timeRange(rows []model.PSPRow) (first, last time.Time) {
	for _, r := range rows {
		if r.Time.IsZero() {
			continue
		}
		if first.IsZero() || r.Time.Before(first) {
			first = r.Time
		}
		if r.Time.After(last) {
			last = r.Time
		}
	}
	return first, last
}
