package tools

import (
	"bytes"
	"context"
	goerrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/observability"
)

// stderrTailBytes bounds how much captured stderr ends up in error messages.
const stderrTailBytes = 2048

// run executes an external binary and waits for it to finish. On failure the
// tail of stderr is folded into the returned error so the user sees the
// tool's own diagnostics without scrolling through its full output.
func run(ctx context.Context, logger *log.Logger, name string, args ...string) error {
	logger = discard(logger)
	logger.Debug("exec", "cmd", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	observability.Tool().OnToolStart(ctx, name)
	start := time.Now()
	err := cmd.Run()
	observability.Tool().OnToolExit(ctx, name, time.Since(start), err)
	if err == nil {
		return nil
	}

	var execErr *exec.Error
	if goerrors.As(err, &execErr) {
		return errors.Wrap(errors.ErrCodeToolNotFound, err, "%s not found on PATH", name)
	}

	tail := stderr.Bytes()
	if len(tail) > stderrTailBytes {
		tail = tail[len(tail)-stderrTailBytes:]
	}
	if len(tail) > 0 {
		return errors.Wrap(errors.ErrCodeToolFailed, err, "%s failed: %s", name, strings.TrimSpace(string(tail)))
	}
	return errors.Wrap(errors.ErrCodeToolFailed, err, "%s failed", name)
}
