package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/engine"
	"github.com/samuel-lab/pyqa/internal/history"
	"github.com/samuel-lab/pyqa/internal/logging"
	"github.com/samuel-lab/pyqa/internal/watch"
)

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run the analysis on an interval and alert on regressions",
	Long: `Watch re-runs the full analysis battery against the project at a regular
interval and compares each run's metrics against the previous run. When
quality regresses (new vulnerabilities, rising issue counts, falling
coverage), desktop notifications and/or terminal alerts are emitted.

Watch always records metrics history, since the comparisons need it.

Examples:
  pyqa watch ~/code/myproject          # run in foreground (ctrl-c to stop)
  pyqa watch --daemon .                # run in background, write PID file
  pyqa watch --interval 30m .          # analyze every 30 minutes (default: 10m)
  pyqa watch --stop                    # stop the background daemon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "10m", "Analysis interval as duration string (e.g. 5m, 1h)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < 30*time.Second {
		return fmt.Errorf("interval must be at least 30s, got %s", interval)
	}

	project := "."
	if len(args) == 1 {
		project = args[0]
	}
	project, err = filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	// Watch compares run-over-run metrics, so tracking stays on.
	settings := cfg.Analysis
	settings.EnableMetricsTracking = true

	tools := cfg.Tools
	if len(tools) == 0 {
		tools = catalog.Names()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	runFn := analysisRunFunc(cfg, project, tools, settings, timeout)

	if watchDaemon {
		return runWatchDaemon(runFn, interval, project)
	}
	return runWatchForeground(runFn, interval, project)
}

// analysisRunFunc builds the per-cycle analysis: a fresh pipeline each
// time, recording history, returning the run's metrics snapshot.
func analysisRunFunc(cfg *config.Config, project string, tools []string, settings config.Settings, timeout time.Duration) watch.RunFunc {
	return func(ctx context.Context) (*history.Snapshot, error) {
		pipe := engine.New(logging.New("engine"))
		pipe.Timeout = timeout
		pipe.History = history.NewStore(cfg.HistoryFile)

		run, err := pipe.Start(ctx, engine.Request{
			ProjectDir: project,
			Tools:      tools,
			Settings:   settings,
		})
		if err != nil {
			return nil, err
		}

		done := make(chan struct{})
		go func() {
			for range run.Events() {
			}
			close(done)
		}()

		select {
		case <-ctx.Done():
			run.Stop(10 * time.Second)
			<-done
			return nil, ctx.Err()
		case <-done:
		}

		if st := run.Status(); st != engine.StatusCompleted {
			if err := run.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("analysis %s", st)
		}
		snap := run.Snapshot()
		if snap == nil {
			return nil, fmt.Errorf("analysis produced no metrics snapshot")
		}
		return snap, nil
	}
}

// runWatchForeground runs the watcher in the foreground with live terminal output.
func runWatchForeground(runFn watch.RunFunc, interval time.Duration, project string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	if !watchQuiet {
		fmt.Printf("pyqa watching %s (analyzing every %s)\n", project, interval)
	}

	alertFn := func(a watch.Alert) {
		// Send desktop notification.
		_ = watch.Notify(a)

		// Print to terminal unless quiet mode.
		if !watchQuiet {
			printAlert(a)
		}
	}

	w := watch.New(interval, runFn, alertFn)
	w.BaselineFn = func(s *history.Snapshot) {
		if watchQuiet {
			return
		}
		fmt.Printf("[%s] %s Baseline: %d issues, coverage %.2f%%\n",
			time.Now().Format("15:04:05"),
			checkMark(),
			totalIssues(s),
			s.CodeCoverage)
	}

	err := w.Run(ctx)
	if err == context.Canceled {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// runWatchDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runWatchDaemon(runFn watch.RunFunc, interval time.Duration, project string) error {
	// Ensure config directory exists.
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// Check for existing daemon.
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	// Write PID file.
	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	// Open log file for output.
	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	writeLog(logFile, "pyqa daemon started (PID %d, interval %s, project %s)", pid, interval, project)

	alertFn := func(a watch.Alert) {
		// Send desktop notification.
		_ = watch.Notify(a)

		// Log to file.
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	w := watch.New(interval, runFn, alertFn)
	w.BaselineFn = func(s *history.Snapshot) {
		writeLog(logFile, "baseline: %d issues, coverage %.2f%%", totalIssues(s), s.CodeCoverage)
	}

	err = w.Run(ctx)
	if err == context.Canceled {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// totalIssues sums every issue-counting metric in a snapshot.
func totalIssues(s *history.Snapshot) int {
	total := 0
	for _, m := range s.Metrics() {
		if !m.HigherIsBetter {
			total += int(m.Value)
		}
	}
	return total
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f *os.File, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(a watch.Alert) {
	timestamp := a.Time.Format("15:04:05")
	icon := alertIcon(a.Level)
	fmt.Printf("[%s] %s %s\n", timestamp, icon, a.Title)
	if a.Message != "" {
		fmt.Printf("         %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "\xe2\x9c\x93"
}
