package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/gasreport/gas"
	"github.com/weiihann/gasreport/report"
)

const comparisonFile = "gas-report-comparison.md"

type compareConfig struct {
	base           string
	candidate      string
	baseInput      string
	candidateInput string
	output         string
	build          bool
}

func newCompareCmd(logger *slog.Logger, opts *options) *cobra.Command {
	var cfg compareConfig

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare gas usage of two contract variants",
		Long: `Run the gas tests of a baseline and a candidate variant one after the
other and write a report of the deployment and per-function average gas
differences.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session(cmd, logger)
			if err != nil {
				return err
			}

			return runCompare(cmd.Context(), s, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.base, "base", gas.Original,
		"Baseline variant")
	flags.StringVar(&cfg.candidate, "candidate", gas.Optimized,
		"Candidate variant")
	flags.StringVar(&cfg.baseInput, "base-input", "",
		"Saved forge output for the baseline (skip running forge)")
	flags.StringVar(&cfg.candidateInput, "candidate-input", "",
		"Saved forge output for the candidate (skip running forge)")
	flags.StringVarP(&cfg.output, "output", "o", "",
		"Output file (default: <project-dir>/"+comparisonFile+", - for stdout)")
	flags.BoolVar(&cfg.build, "build", false,
		"Run forge build before the gas tests")

	return cmd
}

func runCompare(ctx context.Context, s *session, cfg compareConfig) error {
	baseVariant, ok := s.registry.Lookup(cfg.base)
	if !ok {
		return fmt.Errorf("unknown baseline variant %q", cfg.base)
	}

	candVariant, ok := s.registry.Lookup(cfg.candidate)
	if !ok {
		return fmt.Errorf("unknown candidate variant %q", cfg.candidate)
	}

	output := cfg.output
	if output == "" {
		output = defaultOutput(s.dir, comparisonFile, s.format)
	}

	s.logger.InfoContext(ctx, "comparing variants",
		slog.String("base", baseVariant.Name),
		slog.String("candidate", candVariant.Name),
		slog.String("output", output),
	)

	// Build once; both variants share the project.
	baseReport, err := collect(ctx, s, baseVariant, cfg.baseInput, cfg.build)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	candReport, err := collect(ctx, s, candVariant, cfg.candidateInput, false)
	if err != nil {
		return fmt.Errorf("candidate: %w", err)
	}

	comparison, err := report.Compare(
		report.Side{Variant: baseVariant, Report: baseReport},
		report.Side{Variant: candVariant, Report: candReport},
	)
	if err != nil {
		return err
	}

	err = writeReport(output, func(w io.Writer) error {
		return report.RenderComparison(w, s.format, comparison, now())
	})
	if err != nil {
		return err
	}

	cheaper, costlier, unchanged := comparison.Summary()

	s.logger.InfoContext(ctx, "comparison written",
		slog.String("output", output),
		slog.Int("cheaper", cheaper),
		slog.Int("more_expensive", costlier),
		slog.Int("unchanged", unchanged),
	)

	return nil
}
