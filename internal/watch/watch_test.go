package watch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samuel-lab/pyqa/internal/history"
)

// scriptedRuns returns a RunFunc that pops results in order, repeating the
// last entry once the script is exhausted.
func scriptedRuns(snaps []*history.Snapshot, errs []error) RunFunc {
	i := 0
	return func(ctx context.Context) (*history.Snapshot, error) {
		idx := i
		if idx >= len(snaps) {
			idx = len(snaps) - 1
		}
		i++
		if errs != nil && idx < len(errs) && errs[idx] != nil {
			return nil, errs[idx]
		}
		return snaps[idx], nil
	}
}

func TestNew_SetsFields(t *testing.T) {
	called := false
	fn := func(a Alert) { called = true }
	runFn := func(ctx context.Context) (*history.Snapshot, error) { return snap(nil), nil }

	w := New(10*time.Minute, runFn, fn)

	if w.interval != 10*time.Minute {
		t.Errorf("expected interval 10m, got %v", w.interval)
	}
	if w.runFn == nil {
		t.Error("expected non-nil runFn")
	}
	if w.alertFn == nil {
		t.Error("expected non-nil alertFn")
	}

	// Verify the function is the one we passed.
	w.alertFn(Alert{})
	if !called {
		t.Error("expected alertFn to be called")
	}
}

func TestCheck_FirstCycleEstablishesBaseline(t *testing.T) {
	regressed := snap(func(s *history.Snapshot) { s.LintIssues = 9 })
	w := New(time.Minute, scriptedRuns([]*history.Snapshot{snap(nil), regressed}, nil), nil)

	// First check has nothing to compare against.
	alerts := w.Check(context.Background())
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts on baseline cycle, got %d", len(alerts))
	}

	// Second check compares against the baseline.
	alerts = w.Check(context.Background())
	if !hasAlert(alerts, "warning", "Regression: lint issues") {
		t.Error("expected lint regression alert on second cycle")
	}
}

func TestCheck_PreviousAdvancesEachCycle(t *testing.T) {
	regressed := snap(func(s *history.Snapshot) { s.LintIssues = 9 })
	w := New(time.Minute, scriptedRuns([]*history.Snapshot{snap(nil), regressed, regressed}, nil), nil)

	w.Check(context.Background())
	first := w.Check(context.Background())
	if len(first) == 0 {
		t.Fatal("expected alerts on regression cycle")
	}

	// The regressed snapshot is now the baseline, so an identical run
	// raises nothing new.
	second := w.Check(context.Background())
	if len(second) != 0 {
		t.Errorf("expected no alerts for steady state, got %d", len(second))
	}
}

func TestCheck_SuppressesRepeatedFailureAlerts(t *testing.T) {
	fail := errors.New("pylint exploded")
	calls := 0
	runFn := func(ctx context.Context) (*history.Snapshot, error) {
		calls++
		if calls < 3 {
			return nil, fail
		}
		return nil, errors.New("different failure")
	}

	w := New(time.Minute, runFn, nil)

	alerts := w.Check(context.Background())
	if len(alerts) != 1 || alerts[0].Title != "Analysis failed" {
		t.Fatalf("expected one failure alert, got %v", alerts)
	}

	// Same failure again: suppressed.
	alerts = w.Check(context.Background())
	if len(alerts) != 0 {
		t.Errorf("expected repeated failure to be suppressed, got %d alerts", len(alerts))
	}

	// A different failure message alerts again.
	alerts = w.Check(context.Background())
	if len(alerts) != 1 {
		t.Fatalf("expected new failure alert, got %d", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, "different failure") {
		t.Errorf("unexpected message: %q", alerts[0].Message)
	}
}

func TestCheck_CanceledContextDoesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	w := New(time.Minute, func(ctx context.Context) (*history.Snapshot, error) {
		ran = true
		return snap(nil), nil
	}, nil)

	if alerts := w.Check(ctx); alerts != nil {
		t.Errorf("expected nil alerts for canceled context, got %v", alerts)
	}
	if ran {
		t.Error("expected runFn not to be called after cancellation")
	}
}

func TestRun_BaselineFailure(t *testing.T) {
	w := New(time.Minute, func(ctx context.Context) (*history.Snapshot, error) {
		return nil, errors.New("no such project")
	}, nil)

	err := w.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "baseline analysis") {
		t.Errorf("expected baseline analysis error, got %v", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	regressed := snap(func(s *history.Snapshot) { s.SecurityIssues = 7 })

	received := make(chan Alert, 16)
	w := New(5*time.Millisecond,
		scriptedRuns([]*history.Snapshot{snap(nil), regressed}, nil),
		func(a Alert) { received <- a })

	baseline := make(chan *history.Snapshot, 1)
	w.BaselineFn = func(s *history.Snapshot) { baseline <- s }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case s := <-baseline:
		if s == nil || s.SecurityIssues != 1 {
			t.Errorf("unexpected baseline snapshot: %+v", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for baseline")
	}

	// Wait for the first regression alert to prove the loop cycles.
	select {
	case a := <-received:
		if a.Level != "critical" {
			t.Errorf("expected critical alert, got %s", a.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for alert")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to stop")
	}
}
