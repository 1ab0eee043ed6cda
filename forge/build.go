package forge

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"
)

// BinaryEnv names the environment variable that overrides the forge path.
const BinaryEnv = "FORGE_BIN"

// ResolveBinary returns the forge executable to run. An explicit override
// wins, then $FORGE_BIN, then forge on PATH, then the default foundryup
// install location.
func ResolveBinary(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if env := os.Getenv(BinaryEnv); env != "" {
		return env, nil
	}

	if path, err := exec.LookPath("forge"); err == nil {
		return path, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".foundry", "bin", "forge")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", goerrors.New(
		"forge not found: install Foundry or set "+BinaryEnv,
		goerrors.CategoryExternal,
	).WithTextCode(textCodeNotFound)
}

// Build compiles the Foundry project in dir. Compiler output is streamed
// to stderr so it does not mix with the report on stdout.
func Build(
	ctx context.Context,
	logger *slog.Logger,
	binary string,
	dir string,
) error {
	logger.InfoContext(ctx, "building contracts",
		slog.String("project_dir", dir),
	)

	cmd := exec.CommandContext(ctx, binary, "build")
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return wrapContextError(ctx.Err())
		}

		return goerrors.Wrap(err, goerrors.CategoryExternal, "forge build failed").
			WithTextCode(textCodeBuild)
	}

	logger.InfoContext(ctx, "contracts built")

	return nil
}
