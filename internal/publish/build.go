package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
)

// runBuild runs command through sh in dir. An empty command does nothing.
func runBuild(ctx context.Context, command, dir string, stdout, stderr io.Writer) error {
	if strings.TrimSpace(command) == "" {
		slog.DebugContext(ctx, "No documentation build command configured")
		return nil
	}
	slog.InfoContext(ctx, "Building documentation", slog.String("command", command), logfields.Path(dir))

	// #nosec G204 - the command comes from the operator's configuration
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		b := ferrors.WrapError(err, ferrors.CategoryRuntime, "documentation build failed").
			WithContext("command", command).
			WithRetry(ferrors.RetryNever)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			b = b.WithContext(ferrors.ContextExitCode, exitErr.ExitCode())
		}
		return b.Build()
	}
	return nil
}
