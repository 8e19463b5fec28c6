// Package watch re-runs the analysis at a fixed interval and raises alerts
// when quality metrics regress between consecutive runs.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/samuel-lab/pyqa/internal/history"
)

// Alert represents a notable change detected between two analysis runs.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// RunFunc performs one full analysis cycle and returns its metrics snapshot.
type RunFunc func(ctx context.Context) (*history.Snapshot, error)

// Watcher re-runs the analysis at a regular interval and emits alerts when
// notable changes are detected between consecutive runs.
type Watcher struct {
	interval      time.Duration
	runFn         RunFunc
	alertFn       func(Alert)     // callback for emitting alerts
	previous      *history.Snapshot
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// BaselineFn, when set, receives the baseline snapshot once Run has
	// established it, before the interval loop starts.
	BaselineFn func(*history.Snapshot)
}

// New creates a Watcher that re-runs the analysis with runFn every interval.
func New(interval time.Duration, runFn RunFunc, alertFn func(Alert)) *Watcher {
	return &Watcher{
		interval:      interval,
		runFn:         runFn,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Run starts the watch loop. It performs an initial analysis to establish
// the baseline, then re-analyzes at every interval. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	baseline, err := w.runFn(ctx)
	if err != nil {
		return fmt.Errorf("baseline analysis: %w", err)
	}
	w.previous = baseline
	if w.BaselineFn != nil {
		w.BaselineFn(baseline)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			alerts := w.Check(ctx)
			for _, a := range alerts {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single cycle: re-runs the analysis, compares against the
// previous snapshot, updates the previous snapshot, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes, so a
// tool that keeps failing the same way alerts once, not every interval.
func (w *Watcher) Check(ctx context.Context) []Alert {
	if ctx.Err() != nil {
		return nil
	}

	var raw []Alert
	curr, err := w.runFn(ctx)
	if ctx.Err() != nil {
		// Shutdown mid-cycle is not an analysis failure.
		return nil
	}
	if err != nil {
		raw = append(raw, Alert{
			Level:   "warning",
			Title:   "Analysis failed",
			Message: fmt.Sprintf("Could not complete the analysis run: %v", err),
			Time:    time.Now(),
		})
	} else {
		if w.previous != nil {
			raw = Compare(w.previous, curr)
		}
		w.previous = curr
	}

	// Deduplicate: suppress alerts with the same title+message as last cycle.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	return alerts
}
