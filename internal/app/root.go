// Package app contains the Cobra command tree for pyqa.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/samuel-lab/pyqa/internal/logging"
	"github.com/samuel-lab/pyqa/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "pyqa",
	Short: "Quality analysis orchestrator for Python projects",
	Long: `pyqa runs a fixed battery of Python quality tools against a project:
pylint, mypy, radon, bandit, black, pydocstyle, pip-licenses, pytest,
pip-audit, autopep8, isort, flake8 and pdoc. Tool output is parsed into
findings and recommendations, and quality metrics are tracked across runs.

Run 'pyqa run <path>' to analyze a project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logging.Init(level)

		if flagNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("pyqa", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  run       Run the analysis battery against a project")
		fmt.Println("  tools     List analysis tools and check availability")
		fmt.Println("  history   Show metric history and trends")
		fmt.Println("  watch     Re-run the analysis on an interval and alert on regressions")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/pyqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
