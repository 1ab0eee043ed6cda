// Package main provides the CLI entry point for gasreport, which runs
// Foundry gas tests and turns the forge gas report into a markdown document.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	"github.com/weiihann/gasreport/config"
	"github.com/weiihann/gasreport/gas"
	"github.com/weiihann/gasreport/report"
)

// now is the report clock; tests pin it.
var now = time.Now

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		logError(logger, err)
		os.Exit(1)
	}
}

func logError(logger *slog.Logger, err error) {
	args := []any{slog.String("error", err.Error())}
	for _, attr := range goerrors.ToSlogAttributes(err) {
		args = append(args, attr)
	}

	logger.Error("gasreport failed", args...)
}

// options are the flags shared by every command.
type options struct {
	projectDir string
	configPath string
	forgeBin   string
	timeout    time.Duration
	format     string
	verbose    bool
}

// session is the resolved state a command runs with.
type session struct {
	logger   *slog.Logger
	registry *gas.Registry
	format   report.Format
	forgeBin string
	timeout  time.Duration
	dir      string
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	opts := &options{}

	var (
		output string
		input  string
		build  bool
	)

	root := &cobra.Command{
		Use:   "gasreport [original|optimized]",
		Short: "Generate a markdown gas report from forge test output",
		Long: `Gasreport runs "forge test --match-contract <TestContract> --gas-report"
for one contract variant, parses the deployment and per-function gas
figures, and writes a markdown report with a gas ranking and optimization
notes. Values that cannot be parsed fall back to recorded defaults.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd, logger)
			if err != nil {
				return err
			}

			return runGenerate(cmd.Context(), s, generateConfig{
				args:   args,
				output: output,
				input:  input,
				build:  build,
			})
		},
	}

	pflags := root.PersistentFlags()
	pflags.StringVar(&opts.projectDir, "project-dir", ".",
		"Foundry project directory forge runs in")
	pflags.StringVar(&opts.configPath, "config", "",
		"Path to config file (default: <project-dir>/"+config.FileName+")")
	pflags.StringVar(&opts.forgeBin, "forge", "",
		"Path to the forge binary (default: $FORGE_BIN or forge on PATH)")
	pflags.DurationVar(&opts.timeout, "timeout", 0,
		"Abort forge after this long (0 = wait until it exits)")
	pflags.StringVar(&opts.format, "format", "markdown",
		"Output format: markdown, json, html")
	pflags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")

	flags := root.Flags()
	flags.StringVarP(&output, "output", "o", "",
		"Output file (default: <project-dir>/gas-report-<variant>.md, - for stdout)")
	flags.StringVar(&input, "input", "",
		"Parse a saved forge --gas-report output instead of running forge")
	flags.BoolVar(&build, "build", false,
		"Run forge build before the gas tests")

	root.AddCommand(newCompareCmd(logger, opts))
	root.AddCommand(newVariantsCmd(logger, opts))

	return root
}

// session loads the config file and merges it with the flags.
func (o *options) session(cmd *cobra.Command, logger *slog.Logger) (*session, error) {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	path, required := o.configPath, true
	if path == "" {
		path, required = config.DefaultPath(o.projectDir), false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	registry := gas.NewRegistry()
	if err := cfg.Apply(registry); err != nil {
		return nil, err
	}

	s := &session{
		logger:   logger,
		registry: registry,
		format:   format,
		forgeBin: cfg.Forge,
		timeout:  cfg.Timeout,
		dir:      o.projectDir,
	}

	flags := cmd.Flags()
	if flags.Changed("forge") {
		s.forgeBin = o.forgeBin
	}

	if flags.Changed("timeout") {
		s.timeout = o.timeout
	}

	logger.Debug("session ready",
		slog.String("project_dir", s.dir),
		slog.String("config", path),
		slog.String("format", string(s.format)),
		slog.Duration("timeout", s.timeout),
		slog.Any("variants", registry.Names()),
	)

	return s, nil
}
