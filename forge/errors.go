package forge

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeNotFound  = "FORGE_NOT_FOUND"
	textCodeRunFailed = "FORGE_RUN_FAILED"
	textCodeNoOutput  = "FORGE_NO_OUTPUT"
	textCodeBuild     = "FORGE_BUILD_FAILED"
	textCodeCancelled = "FORGE_CANCELLED"
)

// ErrNoOutput is returned when forge exits cleanly but prints nothing.
var ErrNoOutput = errors.New("forge produced no output")

// IsExternal reports whether err came from running the forge tool.
func IsExternal(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryExternal)
}

func wrapRunError(err error, stderr string) error {
	if goerrors.IsWrapped(err) {
		return err
	}

	wrapped := goerrors.Wrap(err, goerrors.CategoryExternal, "forge test failed").
		WithTextCode(textCodeRunFailed)

	if stderr != "" {
		wrapped = wrapped.WithMetadata(map[string]any{"stderr": stderr})
	}

	return wrapped
}

func wrapContextError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "forge run interrupted").
		WithTextCode(textCodeCancelled)
}
