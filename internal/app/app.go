// Package app wires configuration, logging and the pipeline packages into the
// qcl command line.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"qcl/internal/config"
	slackbot "qcl/internal/integrations/slack"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type cli struct {
	configPath string
	verbose    bool

	cfg      config.Config
	log      *zap.Logger
	notifier slackbot.Notifier
}

// Main runs the CLI and exits non-zero on failure. SIGINT and SIGTERM cancel
// the run; classify still saves what it collected.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand(nil).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. A nil logger means one is built
// from the loaded configuration.
func NewRootCommand(log *zap.Logger) *cobra.Command {
	c := &cli{log: log}
	root := &cobra.Command{
		Use:   "qcl",
		Short: "Classify search queries against a fixed taxonomy with an LLM",
		Long: `qcl labels each search query with annotation, entity, intent and topic
flags plus exactly one PRIME category, then rolls the results up into
PRIME and Meta category reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $CONFIG_PATH or config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.classifyCommand(), c.validateCommand(), c.reportCommand(), c.scheduleCommand())
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Read(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.log != nil {
		return nil
	}
	log, err := newLogger(cfg.LogLevel, c.verbose)
	if err != nil {
		return err
	}
	c.log = log
	return nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level %q", config.ErrInvalid, level)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
