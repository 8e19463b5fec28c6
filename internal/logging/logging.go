// Package logging configures the process-wide structured logger.
//
// Commands call Init once during startup; packages obtain component-scoped
// loggers via New and attach run-specific attributes with With.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the default slog handler. Logs go to stderr so they never
// interleave with rendered command output on stdout. Passing a writer
// overrides the destination, which tests use to capture log lines.
func Init(level slog.Level, w ...io.Writer) {
	var out io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// New returns a logger tagged with the given component name.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
