package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/payrecon-dev/payrecon/internal/buildinfo"
	"github.com/payrecon-dev/payrecon/internal/config"
	"github.com/payrecon-dev/payrecon/internal/importer"
	"github.com/payrecon-dev/payrecon/internal/runlog"
	"github.com/payrecon-dev/payrecon/internal/session"
)

// app carries what the global flags resolve to.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	log    *zap.Logger
	loader *importer.Loader
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:     "payrecon",
		Short:   "Payout and settlement reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log == nil {
				return
			}
			if a.loader != nil {
				a.log.Debug("parse cache", zap.Int("hits", a.loader.Hits()))
			}
			_ = a.log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfig+" or "+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newPayoutCommand(a))
	rootCmd.AddCommand(newSettleCommand(a))

	return rootCmd
}

func (a *app) setup() error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(config.Resolve(a.configPath))
	if err != nil {
		return err
	}
	log, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// session starts a session backed by the cached file loader.
func (a *app) session() *session.Session {
	a.loader = importer.NewLoader(importer.DefaultRegistry())
	return session.New(a.cfg, a.loader, a.log)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}

// record appends run entries to the run log in the output dir. A failed write
// is logged and does not fail the command.
func (a *app) record(entries []runlog.Entry) {
	if err := runlog.Append(a.cfg.Output.Dir, entries); err != nil {
		a.log.Warn("writing run log", zap.Error(err))
	}
}
