// Package engine orchestrates analysis runs: tool selection, the per-run
// worker, output adaptation, progress accounting, and the event stream
// consumers render.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samuel-lab/pyqa/internal/adapter"
	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/history"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// DefaultTimeout bounds each tool invocation unless overridden.
const DefaultTimeout = config.DefaultTimeoutSeconds * time.Second

// Configuration errors returned by Start. Each rejects the run before any
// tool executes.
var (
	ErrNoSteps    = errors.New("no analysis steps selected")
	ErrRunActive  = errors.New("an analysis run is already active")
	ErrProjectDir = errors.New("project directory does not exist")
)

// Appender is the snapshot sink written after completed runs.
type Appender interface {
	Append(history.Snapshot) error
}

// commandRunner abstracts process execution for tests.
type commandRunner interface {
	Run(ctx context.Context, inv runner.Invocation) runner.StepResult
}

// Pipeline builds and supervises analysis runs, one at a time.
type Pipeline struct {
	// Timeout bounds each tool invocation.
	Timeout time.Duration

	// History receives one snapshot per completed run when metrics
	// tracking is enabled. Nil disables persistence; the snapshot is
	// still delivered on the FinishedEvent.
	History Appender

	runner commandRunner
	avail  func(string) bool
	log    *slog.Logger

	mu     sync.Mutex
	active *Run
}

// New returns a pipeline with default execution wiring.
func New(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Timeout: DefaultTimeout,
		runner:  runner.New(),
		avail:   runner.IsAvailable,
		log:     log,
	}
}

// Request describes one analysis run.
type Request struct {
	// ProjectDir is the Python project under analysis.
	ProjectDir string
	// Tools are catalog names; input order is irrelevant, tools always
	// execute in the catalog's declared order.
	Tools []string
	// Settings is the analysis settings bundle.
	Settings config.Settings
}

// Start validates the request and launches the run's worker goroutine. It
// returns immediately; callers consume Run.Events or block on Run.Wait.
func (p *Pipeline) Start(ctx context.Context, req Request) (*Run, error) {
	if err := req.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	info, err := os.Stat(req.ProjectDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectDir, req.ProjectDir)
	}
	tools, err := catalog.Select(req.Tools)
	if err != nil {
		return nil, err
	}
	if len(tools) == 0 {
		return nil, ErrNoSteps
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && p.active.Status() == StatusRunning {
		return nil, ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		project:  req.ProjectDir,
		tools:    tools,
		settings: req.Settings,
		// Buffer the worst-case event count so the worker never blocks,
		// even against a consumer that stopped reading mid-run.
		events:   make(chan Event, 8*len(tools)+8),
		done:     make(chan struct{}),
		stopProc: cancel,
		status:   StatusRunning,
	}
	p.active = r

	go p.work(runCtx, r)
	return r, nil
}

// Status reports the pipeline state: Idle before the first run, otherwise
// the most recent run's status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return StatusIdle
	}
	return p.active.Status()
}

// work is the run's single worker goroutine. Tools execute strictly
// sequentially in catalog order; the cancellation flag is observed before
// each launch and again before each result is recorded.
func (p *Pipeline) work(ctx context.Context, r *Run) {
	log := p.log.With(slog.String("project", r.project))
	defer close(r.events)
	defer func() {
		if v := recover(); v != nil {
			log.Error("analysis worker panic", slog.Any("panic", v))
			r.finish(StatusFailed, fmt.Errorf("internal error: %v", v), nil)
		}
	}()

	log.Info("analysis started",
		slog.Int("tools", len(r.tools)),
		slog.Bool("autofix", r.settings.EnableAutofix))

	tracker := NewTracker(r.tools)
	for _, tool := range r.tools {
		if r.stopRequested(ctx) {
			r.finishCanceled(log)
			return
		}
		if aborted := p.runTool(ctx, r, tool, tracker, log); aborted {
			r.finishCanceled(log)
			return
		}
	}
	if r.stopRequested(ctx) {
		r.finishCanceled(log)
		return
	}

	var snap *history.Snapshot
	if r.settings.EnableMetricsTracking {
		s := buildSnapshot(time.Now().UTC(), r.Findings(), r.coverageValue())
		snap = &s
		if p.History != nil {
			if err := p.History.Append(s); err != nil {
				log.Error("recording metrics history failed", slog.String("error", err.Error()))
				r.emit(StatusEvent{Message: "Warning: failed to record metrics history."})
			}
		}
	}

	r.emit(StatusEvent{Message: "Analysis completed."})
	log.Info("analysis completed",
		slog.Int("findings", len(r.Findings())),
		slog.Int("recommendations", len(r.Recommendations())))
	r.finish(StatusCompleted, nil, snap)
}

// runTool executes one catalog entry end to end: availability check,
// launch, report collection, classification messaging, adapter parse,
// optional fix pass, aggregation, progress. It reports true when the run
// was canceled mid-tool and the result must be discarded.
func (p *Pipeline) runTool(ctx context.Context, r *Run, tool catalog.Tool, tracker *Tracker, log *slog.Logger) bool {
	if tool.Fixer && !r.settings.EnableAutofix {
		log.Debug("fixer skipped, autofix disabled", slog.String("tool", tool.Name))
		r.emit(StatusEvent{Message: fmt.Sprintf("%s analysis skipped.", tool.Name)})
		res := runner.StepResult{Tool: tool.Name, Status: runner.StatusSkipped}
		p.completeStep(r, tool, tracker, res, adapter.Report{})
		return false
	}

	if !p.avail(tool.Executable) {
		log.Error("tool not available", slog.String("tool", tool.Executable))
		r.emit(StatusEvent{Message: fmt.Sprintf("Error: %s is not available. Please install it.", tool.Executable)})
		res := runner.StepResult{Tool: tool.Name, Status: runner.StatusToolMissing}
		p.completeStep(r, tool, tracker, res, adapter.Report{})
		return false
	}

	r.emit(StatusEvent{Message: tool.StartMessage})
	if !tool.Fixer {
		r.emit(StatusEvent{Message: fmt.Sprintf("Running %s...", tool.Executable)})
	}

	vars := catalog.Vars{Project: r.project, Settings: r.settings}
	if tool.Report {
		path, err := reportTempFile()
		if err != nil {
			log.Error("creating report file failed", slog.String("error", err.Error()))
			r.emit(StatusEvent{Message: fmt.Sprintf("An error occurred while running %s: %s", tool.Executable, err)})
			res := runner.StepResult{Tool: tool.Name, Status: runner.StatusInternalError, ErrorMessage: err.Error()}
			p.completeStep(r, tool, tracker, res, adapter.Report{})
			return false
		}
		vars.ReportPath = path
		defer os.Remove(path)
	}

	inv := runner.Invocation{
		Tool:    tool.Name,
		Path:    tool.Executable,
		Args:    tool.Arguments(vars),
		Dir:     r.project,
		Timeout: p.Timeout,
	}
	log.Debug("running tool", slog.String("command", inv.String()))
	res := p.runner.Run(ctx, inv)

	// Cancellation observed after the child returned: discard the result.
	if r.stopRequested(ctx) {
		return true
	}

	if tool.Report {
		r.emit(StatusEvent{Message: "Processing coverage report..."})
		collectReport(&res, vars.ReportPath)
	}

	switch res.Status {
	case runner.StatusTimeout:
		log.Error("tool timed out", slog.String("tool", tool.Name), slog.Duration("timeout", p.Timeout))
		r.emit(StatusEvent{Message: fmt.Sprintf("Command %s timed out.", inv)})
	case runner.StatusNonZeroExit:
		log.Warn("tool exited non-zero", slog.String("tool", tool.Name), slog.Int("exit_code", res.ExitCode))
		r.emit(StatusEvent{Message: fmt.Sprintf("Error running %s: %s", inv, strings.TrimSpace(res.Stderr))})
	case runner.StatusInternalError:
		log.Error("tool failed to run", slog.String("tool", tool.Name), slog.String("error", res.ErrorMessage))
		r.emit(StatusEvent{Message: fmt.Sprintf("An error occurred while running %s: %s", inv, res.ErrorMessage)})
	}

	rep := p.parseResult(tool, res, r.settings, log)

	if fixed, aborted := p.runFixPass(ctx, r, tool, vars, log); aborted {
		return true
	} else if fixed {
		rep.Recommendations = append(rep.Recommendations, tool.FixMessage)
	}
	if tool.Fixer {
		// Fixers report through their fixed message.
		rep.Recommendations = append(rep.Recommendations, tool.FixMessage)
	}

	p.completeStep(r, tool, tracker, res, rep)
	return false
}

// parseResult applies the per-tool output policy: parse on success or on a
// tolerated non-zero exit; keep raw output as one opaque finding when a
// crash-style tool exited non-zero; nothing beyond the already-emitted
// status message for timeouts and internal errors.
func (p *Pipeline) parseResult(tool catalog.Tool, res runner.StepResult, set config.Settings, log *slog.Logger) adapter.Report {
	if tool.Fixer {
		return adapter.Report{}
	}
	ad := adapter.ForTool(tool.Name)
	if ad == nil {
		return adapter.Report{}
	}

	switch {
	case res.Status == runner.StatusSuccess,
		res.Status == runner.StatusNonZeroExit && tool.ToleratesNonzero:
		rep := ad.Parse(res, set)
		if rep.ParseWarning != "" {
			log.Warn(rep.ParseWarning, slog.String("tool", tool.Name))
		}
		return rep
	case res.Status == runner.StatusNonZeroExit:
		log.Warn("keeping raw output of failed tool", slog.String("tool", tool.Name))
		return adapter.Report{Findings: []adapter.Finding{{
			Tool:     tool.Name,
			Category: adapter.CategoryRaw,
			Message:  strings.TrimSpace(res.Combined()),
		}}}
	}
	return adapter.Report{}
}

// runFixPass runs the optional in-place fix after a check pass (Black).
func (p *Pipeline) runFixPass(ctx context.Context, r *Run, tool catalog.Tool, vars catalog.Vars, log *slog.Logger) (fixed, aborted bool) {
	if tool.Fixer || len(tool.FixArgs) == 0 || !r.settings.EnableAutofix {
		return false, false
	}
	if r.stopRequested(ctx) {
		return false, true
	}
	if tool.FixStartMessage != "" {
		r.emit(StatusEvent{Message: tool.FixStartMessage})
	}

	inv := runner.Invocation{
		Tool:    tool.Name,
		Path:    tool.Executable,
		Args:    tool.FixArguments(vars),
		Dir:     r.project,
		Timeout: p.Timeout,
	}
	log.Debug("running fix pass", slog.String("command", inv.String()))
	p.runner.Run(ctx, inv)

	if r.stopRequested(ctx) {
		return false, true
	}
	return true, false
}

// completeStep records a tool's outcome and advances the step tracker.
func (p *Pipeline) completeStep(r *Run, tool catalog.Tool, tracker *Tracker, res runner.StepResult, rep adapter.Report) {
	r.mu.Lock()
	r.findings = append(r.findings, rep.Findings...)
	r.recommendations = append(r.recommendations, rep.Recommendations...)
	if rep.Coverage != nil {
		r.coverage = *rep.Coverage
	}
	r.mu.Unlock()

	r.emit(StepEvent{
		Tool:            tool.Name,
		Step:            tool.Step,
		Result:          res,
		Findings:        rep.Findings,
		Recommendations: rep.Recommendations,
	})
	if ev, ok := tracker.Complete(tool.Step); ok {
		r.emit(ev)
		r.emit(StatusEvent{Message: fmt.Sprintf("Completed %d of %d steps.", ev.Completed, ev.Total)})
	}
}

// reportTempFile reserves a path for a tool's secondary report file.
func reportTempFile() (string, error) {
	f, err := os.CreateTemp("", "pyqa-coverage-*.json")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// collectReport loads the report a tool wrote to disk into the result and
// removes the file. The path is pre-created empty, so an empty file means
// the tool finished without writing a report.
func collectReport(res *runner.StepResult, path string) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		res.ReportMissing = true
		return
	}
	res.Report = data
	os.Remove(path)
}
