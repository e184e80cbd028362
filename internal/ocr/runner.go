package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// ToolError is a failed poppler or tesseract invocation.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := e.Tool + ": " + e.Err.Error()
	if e.Missing() {
		msg += " (not installed or not on PATH)"
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Missing reports whether the binary could not be found.
func (e *ToolError) Missing() bool {
	return errors.Is(e.Err, exec.ErrNotFound)
}

func toolError(tool string, stderr []byte, err error) error {
	return &ToolError{Tool: tool, Stderr: truncate(strings.TrimSpace(string(stderr)), 512), Err: err}
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	log := common.LoggerFromContext(ctx, logger).With("cmd", name)

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		// killed by ctx
		err = fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		log.Error("ocr.exec.failed",
			"args", strings.Join(args, " "),
			"elapsed_ms", elapsed,
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
		return out.Bytes(), errb.Bytes(), err
	}
	log.Debug("ocr.exec.ok",
		"elapsed_ms", elapsed,
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
