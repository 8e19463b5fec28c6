package engine

import (
	"github.com/samuel-lab/pyqa/internal/adapter"
	"github.com/samuel-lab/pyqa/internal/history"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// Event is one entry in a run's lifecycle stream. Events are delivered
// exactly once, in order, on the channel returned by Run.Events; the
// channel closes after the terminal FinishedEvent.
type Event interface {
	event()
}

// StatusEvent carries a human-readable progress message, one per
// operator-visible state change.
type StatusEvent struct {
	Message string `json:"message"`
}

// StepEvent reports one tool's completion: the raw result plus whatever the
// tool's adapter extracted from it.
type StepEvent struct {
	Tool            string            `json:"tool"`
	Step            string            `json:"step"`
	Result          runner.StepResult `json:"result"`
	Findings        []adapter.Finding `json:"findings,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// ProgressEvent reports fractional completion after a logical step finishes
// for the first time.
type ProgressEvent struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// FinishedEvent is the terminal event, emitted exactly once per run.
type FinishedEvent struct {
	Status          Status            `json:"status"`
	Err             error             `json:"-"`
	Findings        []adapter.Finding `json:"findings,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Snapshot        *history.Snapshot `json:"snapshot,omitempty"`
}

func (StatusEvent) event()   {}
func (StepEvent) event()     {}
func (ProgressEvent) event() {}
func (FinishedEvent) event() {}
