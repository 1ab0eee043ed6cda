package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/weiihann/gasreport/forge"
	"github.com/weiihann/gasreport/gas"
	"github.com/weiihann/gasreport/report"
)

const textCodeWriteFailed = "REPORT_WRITE_FAILED"

type generateConfig struct {
	args   []string
	output string
	input  string
	build  bool
}

func runGenerate(ctx context.Context, s *session, cfg generateConfig) error {
	var arg string
	if len(cfg.args) > 0 {
		arg = cfg.args[0]
	}

	v, known := s.registry.Resolve(arg)
	if !known && arg != "" {
		s.logger.DebugContext(ctx, "unrecognised variant, using default",
			slog.String("arg", arg),
			slog.String("variant", v.Name),
		)
	}

	output := cfg.output
	if output == "" {
		output = defaultOutput(s.dir, v.OutputFile, s.format)
	}

	s.logger.InfoContext(ctx, "generating gas report",
		slog.String("variant", v.Name),
		slog.String("test_contract", v.TestContract),
		slog.String("output", output),
	)

	r, err := collect(ctx, s, v, cfg.input, cfg.build)
	if err != nil {
		return err
	}

	err = writeReport(output, func(w io.Writer) error {
		return report.Render(w, s.format, r, v, now())
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "gas report written",
		slog.String("output", output),
		slog.Int("functions", len(r.Functions)),
	)

	return nil
}

// collect obtains forge output for v, from a saved file when input is
// set, and parses it. Empty output stops the pipeline.
func collect(
	ctx context.Context,
	s *session,
	v gas.Variant,
	input string,
	build bool,
) (*gas.Report, error) {
	var (
		output string
		err    error
	)

	if input != "" {
		output, err = readInput(input)
	} else {
		output, err = runForge(ctx, s, v, build)
	}

	if err != nil {
		return nil, err
	}

	r := gas.Parse(output, v)

	if r.Defaulted.Deployment || r.Defaulted.Functions {
		s.logger.WarnContext(ctx, "gas data not found in forge output, using defaults",
			slog.String("variant", v.Name),
			slog.Bool("deployment_defaulted", r.Defaulted.Deployment),
			slog.Bool("functions_defaulted", r.Defaulted.Functions),
		)
	}

	s.logger.DebugContext(ctx, "parsed gas report",
		slog.String("variant", v.Name),
		slog.Int("deployment_cost", r.DeploymentCost),
		slog.Int("deployment_size", r.DeploymentSize),
		slog.Int("functions", len(r.Functions)),
		slog.Int("tests_passed", r.TestsPassed),
	)

	return r, nil
}

func runForge(
	ctx context.Context,
	s *session,
	v gas.Variant,
	build bool,
) (string, error) {
	binary, err := forge.ResolveBinary(s.forgeBin)
	if err != nil {
		return "", err
	}

	if build {
		if err := forge.Build(ctx, s.logger, binary, s.dir); err != nil {
			return "", fmt.Errorf("build %s: %w", v.Name, err)
		}
	}

	runner := forge.NewRunner(binary, s.dir, nil, s.logger)

	output, err := runner.Run(ctx, forge.RunConfig{
		TestContract: v.TestContract,
		Timeout:      s.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("run %s: %w", v.Name, err)
	}

	return output, nil
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput,
			fmt.Sprintf("read forge output %s", path))
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", goerrors.Wrap(forge.ErrNoOutput, goerrors.CategoryBadInput,
			fmt.Sprintf("read forge output %s", path))
	}

	return string(data), nil
}

// defaultOutput places the variant's report file in dir, swapping the
// extension to match the format.
func defaultOutput(dir, file string, format report.Format) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(dir, base+format.Ext())
}

// writeReport renders into memory first so a render error never leaves a
// truncated file behind. Existing files are overwritten; "-" writes to
// stdout.
func writeReport(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if path == "-" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return wrapWriteError(err, path)
		}

		return nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrapWriteError(err, path)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return wrapWriteError(err, path)
	}

	return nil
}

func wrapWriteError(err error, path string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation,
		fmt.Sprintf("write report %s", path)).
		WithTextCode(textCodeWriteFailed)
}
