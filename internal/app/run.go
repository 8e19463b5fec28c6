package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuel-lab/pyqa/internal/adapter"
	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/engine"
	"github.com/samuel-lab/pyqa/internal/history"
	"github.com/samuel-lab/pyqa/internal/logging"
	"github.com/samuel-lab/pyqa/internal/output"
	"github.com/samuel-lab/pyqa/internal/runner"
	"github.com/samuel-lab/pyqa/internal/store"
)

var (
	runFlagTools     []string
	runFlagAutofix   bool
	runFlagNoMetrics bool
	runFlagTimeout   int
)

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run the analysis battery against a Python project",
	Long: `Run executes the configured analysis tools against the project at the
given path (default: current directory). Tools always execute one at a
time in a fixed order, regardless of how --tools lists them. Progress,
findings and recommendations stream to the terminal as tools finish.

A first interrupt (ctrl-c) stops the run gracefully after the current
tool; the run is abandoned if the tool does not finish within the grace
period, or immediately on a second interrupt.

Examples:
  pyqa run ~/code/myproject            # full battery
  pyqa run --tools pylint,mypy .       # subset, still in fixed order
  pyqa run --autofix .                 # let autopep8/isort/black modify files
  pyqa run --json . > report.json      # machine-readable summary`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalysis,
}

func init() {
	runCmd.Flags().StringSliceVar(&runFlagTools, "tools", nil, "Subset of tools to run (default: all)")
	runCmd.Flags().BoolVar(&runFlagAutofix, "autofix", false, "Allow fixers to modify project files")
	runCmd.Flags().BoolVar(&runFlagNoMetrics, "no-metrics", false, "Skip metrics history recording")
	runCmd.Flags().IntVar(&runFlagTimeout, "timeout", 0, "Per-tool timeout in seconds (0 = config default)")
	rootCmd.AddCommand(runCmd)
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	project := "."
	if len(args) == 1 {
		project = args[0]
	}
	project, err = filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	settings := cfg.Analysis
	if runFlagAutofix {
		settings.EnableAutofix = true
	}
	if runFlagNoMetrics {
		settings.EnableMetricsTracking = false
	}

	tools := runFlagTools
	if len(tools) == 0 {
		tools = cfg.Tools
	}
	if len(tools) == 0 {
		tools = catalog.Names()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if runFlagTimeout > 0 {
		timeout = time.Duration(runFlagTimeout) * time.Second
	}

	pipe := engine.New(logging.New("engine"))
	pipe.Timeout = timeout
	if settings.EnableMetricsTracking {
		pipe.History = history.NewStore(cfg.HistoryFile)
	}

	run, err := pipe.Start(cmd.Context(), engine.Request{
		ProjectDir: project,
		Tools:      tools,
		Settings:   settings,
	})
	if err != nil {
		return err
	}

	// First interrupt requests a graceful stop; the engine abandons the
	// in-flight tool after the grace period. A second interrupt abandons
	// it immediately.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nStopping after the current tool... (interrupt again to abort)")
		go run.Stop(10 * time.Second)
		<-sigCh
		fmt.Fprintln(os.Stderr, "Aborting.")
		run.Stop(0)
	}()

	var (
		final engine.FinishedEvent
		steps []engine.StepEvent
	)
	for ev := range run.Events() {
		switch e := ev.(type) {
		case engine.StatusEvent:
			if !flagJSON {
				fmt.Println(e.Message)
			}
		case engine.StepEvent:
			steps = append(steps, e)
			if !flagJSON {
				printStepLine(e)
			}
		case engine.ProgressEvent:
			if !flagJSON {
				fmt.Println(" " + output.ProgressBar(e.Percent, cfg.Output.Width))
			}
		case engine.FinishedEvent:
			final = e
		}
	}

	if flagJSON {
		if err := printRunJSON(project, steps, final); err != nil {
			return err
		}
	} else {
		printRunSummary(final, cfg.Output.Width)
	}

	if final.Status == engine.StatusCompleted && settings.EnableMetricsTracking {
		if err := archiveRun(project, final); err != nil {
			logging.New("app").Warn("failed to record run archive", "error", err)
		}
	}

	switch final.Status {
	case engine.StatusCompleted:
		return nil
	case engine.StatusCanceled:
		return fmt.Errorf("analysis canceled")
	default:
		if final.Err != nil {
			return fmt.Errorf("analysis failed: %v", final.Err)
		}
		return fmt.Errorf("analysis failed")
	}
}

// printStepLine renders one tool's completion line.
func printStepLine(e engine.StepEvent) {
	mark := "✗"
	switch e.Result.Status {
	case runner.StatusSuccess, runner.StatusNonZeroExit:
		mark = output.StyleSuccess.Render("✓")
	case runner.StatusSkipped:
		mark = output.StyleMuted.Render("-")
	default:
		mark = output.StyleError.Render(mark)
	}

	detail := humanStatus(e.Result.Status)
	if n := len(e.Findings); n > 0 {
		detail = fmt.Sprintf("%s, %d findings", detail, n)
	}
	fmt.Printf(" %s %s (%s)\n", mark, output.StyleBold.Render(e.Tool), detail)
}

// humanStatus renders a runner status for terminal output.
func humanStatus(s runner.Status) string {
	switch s {
	case runner.StatusToolMissing:
		return "tool missing"
	case runner.StatusNonZeroExit:
		return "non-zero exit"
	case runner.StatusInternalError:
		return "internal error"
	default:
		return string(s)
	}
}

func printRunSummary(final engine.FinishedEvent, width int) {
	if len(final.Findings) > 0 {
		fmt.Println(output.Section("Findings"))
		fmt.Println()
		tbl := output.NewTable("Tool", "Severity", "Location", "Message")
		for _, f := range final.Findings {
			tbl.AddRow(f.Tool, output.Severity(f.Severity), findingLocation(f), truncate(f.Message, 70))
		}
		tbl.Print()
	}

	if len(final.Recommendations) > 0 {
		fmt.Println(output.Section("Recommendations"))
		fmt.Println()
		for i, rec := range final.Recommendations {
			fmt.Printf(" %2d. %s\n", i+1, rec)
		}
	}

	if snap := final.Snapshot; snap != nil {
		fmt.Println(output.Section("Metrics"))
		fmt.Println()
		for _, m := range snap.Metrics() {
			if m.Name == "code_coverage" {
				fmt.Printf(" %s %s\n",
					output.StyleLabel.Render(m.Label+":"),
					output.CoverageBar(m.Value, width))
				continue
			}
			fmt.Printf(" %s %s\n",
				output.StyleLabel.Render(m.Label+":"),
				output.StyleValue.Render(fmt.Sprintf("%.0f", m.Value)))
		}
	}

	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Status:"),
		output.StatusText(string(final.Status)))
}

// runStep is one row of the JSON run report.
type runStep struct {
	Tool      string `json:"tool"`
	Step      string `json:"step"`
	Status    string `json:"status"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Findings  int    `json:"findings"`
}

// runReport is the machine-readable summary for --json mode.
type runReport struct {
	Project         string            `json:"project"`
	Status          string            `json:"status"`
	Steps           []runStep         `json:"steps"`
	Findings        []adapter.Finding `json:"findings,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Snapshot        *history.Snapshot `json:"snapshot,omitempty"`
	Error           string            `json:"error,omitempty"`
}

func printRunJSON(project string, steps []engine.StepEvent, final engine.FinishedEvent) error {
	rep := runReport{
		Project:         project,
		Status:          string(final.Status),
		Steps:           make([]runStep, 0, len(steps)),
		Findings:        final.Findings,
		Recommendations: final.Recommendations,
		Snapshot:        final.Snapshot,
	}
	if final.Err != nil {
		rep.Error = final.Err.Error()
	}
	for _, e := range steps {
		rep.Steps = append(rep.Steps, runStep{
			Tool:      e.Tool,
			Step:      e.Step,
			Status:    string(e.Result.Status),
			ElapsedMS: e.Result.Elapsed.Milliseconds(),
			Findings:  len(e.Findings),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// archiveRun records a completed run in the SQLite archive.
func archiveRun(project string, final engine.FinishedEvent) error {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	runID, err := db.CreateRun(time.Now(), project, string(final.Status), appVersion)
	if err != nil {
		return err
	}

	if snap := final.Snapshot; snap != nil {
		for _, m := range snap.Metrics() {
			if err := db.InsertRunMetric(runID, m.Name, m.Value); err != nil {
				return err
			}
		}
	}
	for i, rec := range final.Recommendations {
		if err := db.InsertRecommendation(runID, i, rec); err != nil {
			return err
		}
	}
	for _, f := range final.Findings {
		row := &store.Finding{
			RunID:    runID,
			Tool:     f.Tool,
			Category: f.Category,
			Severity: f.Severity,
			Message:  f.Message,
			File:     f.File,
			Line:     f.Line,
		}
		if err := db.InsertFinding(row); err != nil {
			return err
		}
	}
	return nil
}

// findingLocation formats a finding's file and line for display.
func findingLocation(f adapter.Finding) string {
	if f.File == "" {
		return ""
	}
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

// truncate shortens a string to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
