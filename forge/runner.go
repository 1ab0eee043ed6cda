// Package forge runs Foundry's forge tool and captures its gas report output.
package forge

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RunConfig holds parameters for a single forge test execution.
type RunConfig struct {
	TestContract string
	// Timeout bounds the run. Zero waits for forge to finish.
	Timeout time.Duration
}

// Runner launches forge in a project directory.
type Runner struct {
	Binary    string
	Dir       string
	ExtraArgs []string
	Env       []string
	Logger    *slog.Logger
}

// NewRunner creates a Runner for the Foundry project in dir.
// Env is appended to the inherited environment.
func NewRunner(binary, dir string, env []string, logger *slog.Logger) *Runner {
	return &Runner{
		Binary: binary,
		Dir:    dir,
		Env:    env,
		Logger: logger.With(slog.String("project_dir", dir)),
	}
}

// TestArgs returns the forge arguments that produce a gas report for
// the given test contract.
func TestArgs(testContract string) []string {
	return []string{"test", "--match-contract", testContract, "--gas-report"}
}

// Run executes forge test with a gas report and returns its stdout.
// A non-zero exit or an empty stdout is an error; no partial output is
// returned in either case.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (string, error) {
	if cfg.TestContract == "" {
		return "", goerrors.New("test contract is required", goerrors.CategoryBadInput)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.ExtraArgs)+4)
	args = append(args, TestArgs(cfg.TestContract)...)
	args = append(args, r.ExtraArgs...)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.InfoContext(ctx, "running gas tests",
		slog.String("binary", r.Binary),
		slog.String("test_contract", cfg.TestContract),
	)

	start := time.Now()

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", wrapContextError(ctx.Err())
		}

		return "", wrapRunError(err, strings.TrimSpace(stderr.String()))
	}

	r.Logger.InfoContext(ctx, "gas tests finished",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("stdout_bytes", stdout.Len()),
	)

	if strings.TrimSpace(stdout.String()) == "" {
		return "", goerrors.Wrap(ErrNoOutput, goerrors.CategoryExternal, "forge test").
			WithTextCode(textCodeNoOutput)
	}

	return stdout.String(), nil
}
