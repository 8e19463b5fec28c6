// Package runner executes analysis tools as child processes and classifies
// the outcome of each invocation.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Status classifies the outcome of one tool invocation.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusToolMissing Status = "tool-missing"
	StatusTimeout     Status = "timeout"
	StatusNonZeroExit Status = "non-zero-exit"
	// StatusInternalError covers launch failures and other unexpected
	// errors from the process layer.
	StatusInternalError Status = "internal-error"
	// StatusSkipped is never produced by the runner itself; the engine
	// synthesizes it for autofix-gated tools when autofix is disabled.
	StatusSkipped Status = "skipped"
)

// StepResult is the raw outcome of one tool invocation. Stdout and stderr
// are captured separately because some adapters only care about one stream.
type StepResult struct {
	Tool         string        `json:"tool"`
	Status       Status        `json:"status"`
	Stdout       string        `json:"stdout,omitempty"`
	Stderr       string        `json:"stderr,omitempty"`
	ExitCode     int           `json:"exit_code"`
	Elapsed      time.Duration `json:"elapsed"`
	ErrorMessage string        `json:"error,omitempty"`

	// Report holds the secondary JSON report collected for tools that
	// write one to disk; ReportMissing records that the tool finished
	// without producing it.
	Report        []byte `json:"-"`
	ReportMissing bool   `json:"report_missing,omitempty"`
}

// Combined joins the trimmed stdout and stderr, for adapters that inspect
// both streams at once.
func (r StepResult) Combined() string {
	return strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr)
}

// Invocation describes one command to execute.
type Invocation struct {
	Tool    string
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the command line the way it would be typed in a shell.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Path}, inv.Args...), " ")
}

// Runner launches child processes. The zero value is usable.
type Runner struct{}

// New returns a Runner.
func New() *Runner {
	return &Runner{}
}

// Run executes the invocation and classifies the result. The child is killed
// when the per-step timeout elapses or when ctx is canceled; cancellation
// surfaces as an internal error the caller is expected to discard.
func (r *Runner) Run(ctx context.Context, inv Invocation) StepResult {
	stepCtx := ctx
	cancel := context.CancelFunc(func() {})
	if inv.Timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(stepCtx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	res := StepResult{
		Tool:    inv.Tool,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: time.Since(start),
	}

	switch {
	case err == nil:
		res.Status = StatusSuccess
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Status = StatusTimeout
		res.ExitCode = -1
	case ctx.Err() != nil:
		res.Status = StatusInternalError
		res.ErrorMessage = "run canceled"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Status = StatusNonZeroExit
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Status = StatusInternalError
			res.ErrorMessage = err.Error()
		}
	}
	return res
}
