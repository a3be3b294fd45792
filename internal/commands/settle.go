package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payrecon-dev/payrecon/internal/importer"
	"github.com/payrecon-dev/payrecon/internal/report"
	"github.com/payrecon-dev/payrecon/internal/runlog"
	"github.com/payrecon-dev/payrecon/internal/session"
)

const dayFormat = "2006-01-02"

func newSettleCommand(a *app) *cobra.Command {
	var pspPath, start, end, out string
	var orders []string

	cmd := &cobra.Command{
		Use:   "settle <feed>",
		Short: "Reconcile a provider settlement export against order lists",
		Long: `Reconcile a provider settlement export against order lists.

The feed names an entry of settlement.feeds in the config (zen, bridgerpay
and coinsbuy by default). --orders takes files or directories; every .csv
and .xlsx file in a directory is used. Without --start/--end the window
covers every day present in the provider export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := session.SettleRequest{Feed: args[0], PSP: pspPath}

			var err error
			if req.Orders, err = expandOrders(orders); err != nil {
				return err
			}
			if req.Start, err = parseDay("start", start); err != nil {
				return err
			}
			if req.End, err = parseDay("end", end); err != nil {
				return err
			}
			return runSettle(cmd, a, req, out)
		},
	}

	cmd.Flags().StringVar(&pspPath, "psp", "", "provider settlement export, .csv or .xlsx (required)")
	_ = cmd.MarkFlagRequired("psp")
	cmd.Flags().StringSliceVar(&orders, "orders", nil, "order list files or directories (required)")
	_ = cmd.MarkFlagRequired("orders")
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&out, "out", "", "workbook path (default <output dir>/<feed>_order_comparison.xlsx)")

	return cmd
}

func parseDay(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s: %w", name, err)
	}
	return t, nil
}

// expandOrders replaces each directory with the importable files inside it.
func expandOrders(paths []string) ([]string, error) {
	reg := importer.DefaultRegistry()
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("order list: %w", err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := reg.Scan(p)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("order list: no .csv or .xlsx files in %s", p)
		}
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

func runSettle(cmd *cobra.Command, a *app, req session.SettleRequest, out string) error {
	stdout := cmd.OutOrStdout()

	s := a.session()
	outcome, err := s.Settle(cmd.Context(), req)
	if errors.Is(err, session.ErrNoValidData) {
		fmt.Fprintf(stdout, "%s: %v\n", req.Feed, err)
		return nil
	}
	if err != nil {
		return err
	}
	report.PrintSettlement(stdout, req.Feed, outcome)

	if out == "" {
		out = filepath.Join(a.cfg.Output.Dir, req.Feed+"_order_comparison.xlsx")
	}
	if err := writeWorkbook(out, report.SettlementSheets(outcome)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", out)

	rep := outcome.Report
	revenue := decimal.Zero
	for _, line := range outcome.Revenue {
		revenue = revenue.Add(line.Revenue)
	}
	a.record([]runlog.Entry{{
		Timestamp:   time.Now().UTC(),
		Session:     s.ID.String(),
		Command:     runlog.CommandSettle,
		Subject:     req.Feed,
		Source:      filepath.Base(req.PSP),
		Matched:     rep.Joined,
		Differences: len(rep.Mismatches),
		SourceOnly:  rep.CatchAll,
		Amount:      revenue,
		Output:      out,
	}})
	return nil
}
