package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samuel-lab/pyqa/internal/adapter"
	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/history"
)

// Status is a run's lifecycle state. Terminal states are final.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

// Run is one in-flight or finished analysis.
type Run struct {
	project  string
	tools    []catalog.Tool
	settings config.Settings

	events   chan Event
	done     chan struct{}
	stopProc context.CancelFunc
	canceled atomic.Bool

	mu              sync.Mutex
	status          Status
	err             error
	findings        []adapter.Finding
	recommendations []string
	coverage        float64
	snapshot        *history.Snapshot
}

// Events returns the run's ordered event stream. The channel is buffered
// for the whole run and closes after the terminal event.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Cancel requests cooperative cancellation: the in-flight tool finishes
// (its result is discarded) and no further tool starts.
func (r *Run) Cancel() {
	r.canceled.Store(true)
}

// Stop cancels the run, waits up to grace for a clean exit, then kills the
// in-flight tool and waits for the worker to wind down. It returns the
// terminal status.
func (r *Run) Stop(grace time.Duration) Status {
	r.Cancel()
	select {
	case <-r.done:
	case <-time.After(grace):
		r.stopProc()
		<-r.done
	}
	return r.Status()
}

// Wait blocks until the run reaches a terminal status.
func (r *Run) Wait() Status {
	<-r.done
	return r.Status()
}

// Status returns the run's current lifecycle state.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Err returns the failure cause of a StatusFailed run.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Findings returns the findings aggregated so far, in run order.
func (r *Run) Findings() []adapter.Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]adapter.Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Recommendations returns the recommendations aggregated so far, in run
// order.
func (r *Run) Recommendations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.recommendations))
	copy(out, r.recommendations)
	return out
}

// Snapshot returns the metrics snapshot of a completed run, nil otherwise.
func (r *Run) Snapshot() *history.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

func (r *Run) coverageValue() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coverage
}

// stopRequested reports whether the cooperative flag was set or the run
// context was canceled. Checked at every step boundary.
func (r *Run) stopRequested(ctx context.Context) bool {
	return r.canceled.Load() || ctx.Err() != nil
}

func (r *Run) emit(ev Event) {
	r.events <- ev
}

func (r *Run) finishCanceled(log *slog.Logger) {
	log.Info("analysis canceled")
	r.emit(StatusEvent{Message: "Analysis canceled."})
	r.finish(StatusCanceled, nil, nil)
}

// finish records the terminal state and emits the FinishedEvent, exactly
// once per run.
func (r *Run) finish(status Status, err error, snap *history.Snapshot) {
	r.mu.Lock()
	r.status = status
	r.err = err
	r.snapshot = snap
	findings := make([]adapter.Finding, len(r.findings))
	copy(findings, r.findings)
	recs := make([]string, len(r.recommendations))
	copy(recs, r.recommendations)
	r.mu.Unlock()

	r.emit(FinishedEvent{
		Status:          status,
		Err:             err,
		Findings:        findings,
		Recommendations: recs,
		Snapshot:        snap,
	})
	close(r.done)
}

// buildSnapshot folds the run's findings into the metrics history schema.
// Raw findings from undecodable output deliberately stay out of the
// per-category counts.
func buildSnapshot(now time.Time, findings []adapter.Finding, coverage float64) history.Snapshot {
	snap := history.Snapshot{Date: now, CodeCoverage: coverage}
	for _, f := range findings {
		switch f.Category {
		case adapter.CategoryLint:
			snap.LintIssues++
		case adapter.CategorySecurity:
			snap.SecurityIssues++
		case adapter.CategoryFormatting:
			snap.FormattingIssues++
		case adapter.CategoryDocstring:
			snap.DocumentationIssues++
		case adapter.CategoryDuplication:
			snap.DuplicationIssues++
		case adapter.CategoryVulnerability:
			snap.Vulnerabilities++
		}
	}
	return snap
}
