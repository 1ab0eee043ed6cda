package forge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeForge writes an executable shell script standing in for forge.
func fakeForge(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake forge script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "forge")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestRunCapturesStdout(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")

	bin := fakeForge(t, `echo "$@" > "$ARGS_FILE"
pwd >> "$ARGS_FILE"
echo "| increment | 28685 | 34385 | 28685 | 45785 | 6 |"
echo "compiler noise" >&2`)

	runner := NewRunner(bin, dir, []string{"ARGS_FILE=" + argsFile}, discardLogger())

	out, err := runner.Run(context.Background(), RunConfig{TestContract: "CounterGasTest"})
	require.NoError(t, err)
	assert.Equal(t, "| increment | 28685 | 34385 | 28685 | 45785 | 6 |\n", out)

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "test --match-contract CounterGasTest --gas-report", lines[0])

	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(lines[1])
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestRunNonZeroExit(t *testing.T) {
	bin := fakeForge(t, `echo "partial table"
echo "Compiler run failed" >&2
exit 3`)

	runner := NewRunner(bin, t.TempDir(), nil, discardLogger())

	out, err := runner.Run(context.Background(), RunConfig{TestContract: "CounterGasTest"})
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, IsExternal(err))

	var richErr *goerrors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, textCodeRunFailed, richErr.TextCode)
	assert.Equal(t, "Compiler run failed", richErr.Metadata["stderr"])
}

func TestRunEmptyOutput(t *testing.T) {
	bin := fakeForge(t, `echo "   "`)

	runner := NewRunner(bin, t.TempDir(), nil, discardLogger())

	_, err := runner.Run(context.Background(), RunConfig{TestContract: "CounterGasTest"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.True(t, IsExternal(err))
}

func TestRunTimeout(t *testing.T) {
	bin := fakeForge(t, `exec sleep 5`)

	runner := NewRunner(bin, t.TempDir(), nil, discardLogger())

	start := time.Now()
	_, err := runner.Run(context.Background(), RunConfig{
		TestContract: "CounterGasTest",
		Timeout:      100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var richErr *goerrors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, textCodeCancelled, richErr.TextCode)
}

func TestRunRequiresTestContract(t *testing.T) {
	runner := NewRunner("forge", t.TempDir(), nil, discardLogger())

	_, err := runner.Run(context.Background(), RunConfig{})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestResolveBinary(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		t.Setenv(BinaryEnv, "/from/env")

		got, err := ResolveBinary("/explicit/forge")
		require.NoError(t, err)
		assert.Equal(t, "/explicit/forge", got)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv(BinaryEnv, "/from/env")

		got, err := ResolveBinary("")
		require.NoError(t, err)
		assert.Equal(t, "/from/env", got)
	})

	t.Run("path", func(t *testing.T) {
		bin := fakeForge(t, "exit 0")
		t.Setenv(BinaryEnv, "")
		t.Setenv("PATH", filepath.Dir(bin))

		got, err := ResolveBinary("")
		require.NoError(t, err)
		assert.Equal(t, bin, got)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv(BinaryEnv, "")
		t.Setenv("PATH", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		_, err := ResolveBinary("")
		require.Error(t, err)
		assert.True(t, IsExternal(err))
	})
}

func TestBuild(t *testing.T) {
	ok := fakeForge(t, `[ "$1" = "build" ] || exit 9`)
	require.NoError(t, Build(context.Background(), discardLogger(), ok, t.TempDir()))

	failing := fakeForge(t, "exit 1")
	err := Build(context.Background(), discardLogger(), failing, t.TempDir())
	require.Error(t, err)
	assert.True(t, IsExternal(err))
}
