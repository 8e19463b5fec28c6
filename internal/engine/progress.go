package engine

import "github.com/samuel-lab/pyqa/internal/catalog"

// Tracker counts logical-step completion for one run. Several tools may
// share a step (Black, Autopep8 and Isort all contribute to formatting);
// the step counts once, on first completion.
type Tracker struct {
	total int
	steps map[string]bool
	done  map[string]bool
}

// NewTracker derives the distinct logical steps from the selected tools.
func NewTracker(tools []catalog.Tool) *Tracker {
	steps := catalog.Steps(tools)
	set := make(map[string]bool, len(steps))
	for _, s := range steps {
		set[s] = true
	}
	return &Tracker{
		total: len(steps),
		steps: set,
		done:  make(map[string]bool, len(steps)),
	}
}

// Total returns the number of distinct logical steps in this run.
func (t *Tracker) Total() int {
	return t.total
}

// Completed returns how many steps have finished.
func (t *Tracker) Completed() int {
	return len(t.done)
}

// Percent returns completion as 0-100.
func (t *Tracker) Percent() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(len(t.done)) / float64(t.total) * 100
}

// Complete marks a step finished. It reports false, with no progress
// change, for steps outside this run or already completed.
func (t *Tracker) Complete(step string) (ProgressEvent, bool) {
	if !t.steps[step] || t.done[step] {
		return ProgressEvent{}, false
	}
	t.done[step] = true
	return ProgressEvent{
		Completed: len(t.done),
		Total:     t.total,
		Percent:   t.Percent(),
	}, true
}
