package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner runs an external command and returns its stdout.
// A failed command comes back as a *CommandError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError is a missing binary or a non-zero exit, with the end of stderr.
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

const stderrTail = 2 << 10

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		ce := &CommandError{Name: name, Stderr: tail(strings.TrimSpace(stderr.String()), stderrTail), Err: err}
		r.logger.Warn("ocr.exec.failed", "cmd", name, "elapsed_ms", elapsed, "error", ce)
		return nil, ce
	}
	r.logger.Debug("ocr.exec.ok", "cmd", name, "elapsed_ms", elapsed, "stdout_bytes", len(out))
	return out, nil
}

// tail keeps the last n bytes; tesseract prints the actual failure at the end.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
