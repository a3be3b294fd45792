package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/report"
	"github.com/payrecon-dev/payrecon/internal/runlog"
	"github.com/payrecon-dev/payrecon/internal/session"
)

type payoutFlags struct {
	ledger   string
	forex    []string
	futures  []string
	out      string
	csvDir   string
	noReport bool
}

func newPayoutCommand(a *app) *cobra.Command {
	f := &payoutFlags{}
	var forexA, forexB, futuresA, futuresB string

	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Reconcile a payout ledger against pasted payout lines",
		Long: `Reconcile a payout ledger against pasted payout lines.

Each --*-a / --*-b flag names a text file of pasted lines for one category.
Lines may be "login amount" or "login[,login...] amount email"; both shapes
can be mixed in one file. Use - to read one of them from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.forex = nonEmpty(forexA, forexB)
			f.futures = nonEmpty(futuresA, futuresB)
			return runPayout(cmd, a, f)
		},
	}

	cmd.Flags().StringVar(&f.ledger, "ledger", "", "payout ledger export, .csv or .xlsx (required)")
	_ = cmd.MarkFlagRequired("ledger")
	cmd.Flags().StringVar(&forexA, "forex-a", "", "pasted Forex lines")
	cmd.Flags().StringVar(&forexB, "forex-b", "", "more pasted Forex lines")
	cmd.Flags().StringVar(&futuresA, "futures-a", "", "pasted Futures lines")
	cmd.Flags().StringVar(&futuresB, "futures-b", "", "more pasted Futures lines")
	cmd.Flags().StringVar(&f.out, "out", "", "workbook path (default <output dir>/payout_reconciliation.xlsx)")
	cmd.Flags().StringVar(&f.csvDir, "csv-dir", "", "also write one CSV per sheet into this directory")
	cmd.Flags().BoolVar(&f.noReport, "no-report", false, "print the summary only")

	return cmd
}

func nonEmpty(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runPayout(cmd *cobra.Command, a *app, f *payoutFlags) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()

	s := a.session()
	ov, err := s.LoadLedger(ctx, f.ledger)
	if err != nil {
		return err
	}
	report.PrintOverview(stdout, s.LedgerName(), ov)

	stdinUsed := false
	sections := []struct {
		category model.Category
		paths    []string
	}{
		{model.CategoryForex, f.forex},
		{model.CategoryFutures, f.futures},
	}
	for _, sec := range sections {
		if len(sec.paths) == 0 {
			continue
		}
		text, err := readPasted(cmd.InOrStdin(), sec.paths, &stdinUsed)
		if err != nil {
			return err
		}

		res, err := s.ProceedSection(sec.category, text)
		switch {
		case errors.Is(err, session.ErrNoValidData):
			fmt.Fprintf(stdout, "%s: %v\n", sec.category, err)
			continue
		case err != nil:
			return err
		}
		report.PrintResult(stdout, res)
	}

	results := s.Results()
	if len(results) == 0 {
		fmt.Fprintln(stdout, "No section reconciled.")
		return nil
	}
	master := s.Master()
	if master.Complete() {
		report.PrintMaster(stdout, master)
	}
	if f.noReport {
		a.record(payoutEntries(s, results, ""))
		return nil
	}

	sheets := report.PayoutSheets(results, master)
	out := f.out
	if out == "" {
		out = filepath.Join(a.cfg.Output.Dir, "payout_reconciliation.xlsx")
	}
	if err := writeWorkbook(out, sheets); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", out)
	a.record(payoutEntries(s, results, out))

	if f.csvDir != "" {
		paths, err := report.WriteCSVDir(f.csvDir, sheets)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d CSV files to %s\n", len(paths), f.csvDir)
	}
	return nil
}

func payoutEntries(s *session.Session, results []model.Result, out string) []runlog.Entry {
	now := time.Now().UTC()
	entries := make([]runlog.Entry, 0, len(results))
	for _, res := range results {
		c := res.Summary
		entries = append(entries, runlog.Entry{
			Timestamp:    now,
			Session:      s.ID.String(),
			Command:      runlog.CommandPayout,
			Subject:      string(res.Category),
			Source:       s.LedgerName(),
			Matched:      c.Matched,
			Differences:  c.Discrepant,
			SourceOnly:   c.AuthoritativeOnly,
			ReportedOnly: c.ReportedOnly,
			Amount:       c.AuthoritativeTotal,
			Output:       out,
		})
	}
	return entries
}

// readPasted joins the pasted text files. "-" reads stdin, at most once per run.
func readPasted(stdin io.Reader, paths []string, stdinUsed *bool) (string, error) {
	var parts []string
	for _, p := range paths {
		var data []byte
		var err error
		if p == "-" {
			if *stdinUsed {
				return "", errors.New("stdin can only be read once")
			}
			*stdinUsed = true
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return "", fmt.Errorf("reading pasted lines %s: %w", p, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n"), nil
}

func writeWorkbook(path string, sheets []report.Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return report.SaveWorkbook(path, sheets)
}
