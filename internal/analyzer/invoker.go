// Package analyzer invokes the external code-analysis command over a digest
// artifact and captures its report.
//
// The external tool is an opaque collaborator: codedigest only passes the
// digest path and an instruction prompt as arguments and persists whatever
// the tool prints on stdout. stderr is kept out of the report and surfaced
// in error messages only.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/codedigest/internal/config"
)

// Invoker is a reusable client for running the external analysis command.
// It follows the http.Client pattern: create once, use many times.
type Invoker struct {
	// Command is the analysis binary (found in PATH if relative).
	Command string

	// Args are extra arguments inserted before the digest path and prompt.
	Args []string

	// Prompt is the instruction string passed as the final argument.
	Prompt string

	// Timeout bounds a single invocation. Zero means no timeout; the call
	// then blocks until the tool exits.
	Timeout time.Duration
}

// NewInvoker creates an Invoker from analyzer configuration.
func NewInvoker(cfg config.AnalyzerConfig) *Invoker {
	return &Invoker{
		Command: cfg.Command,
		Args:    cfg.Args,
		Prompt:  cfg.Prompt,
		Timeout: cfg.Timeout,
	}
}

// Analyze runs the external command with the digest path and prompt appended
// to the configured arguments, blocking until it exits, and returns its
// stdout verbatim.
//
// A spawn failure or non-zero exit is returned as an error with an excerpt
// of stderr; no report bytes are returned in that case. There is no retry.
func (inv *Invoker) Analyze(ctx context.Context, digestPath string) ([]byte, error) {
	if inv.Command == "" {
		return nil, fmt.Errorf("analysis command is required")
	}

	ctxToUse := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctxToUse, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(inv.Args)+2)
	args = append(args, inv.Args...)
	args = append(args, digestPath, inv.Prompt)

	cmd := exec.CommandContext(ctxToUse, inv.Command, args...)

	// stdout is the report and must round-trip verbatim, so stderr is
	// captured separately and never mixed in
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch ctxErr := ctxToUse.Err(); {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			return nil, fmt.Errorf("analysis command timed out: %w", ctxErr)
		case errors.Is(ctxErr, context.Canceled):
			return nil, fmt.Errorf("analysis command canceled: %w", ctxErr)
		}
		return nil, fmt.Errorf("analysis command failed: %w (stderr: %s)", err, truncate(stderr.String(), 200))
	}

	return stdout.Bytes(), nil
}

// truncate returns s truncated to maxLen characters with "..." suffix if needed.
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
