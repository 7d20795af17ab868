// Package cli implements the slambuc command-line interface.
//
// The commands partition call trees read from JSON or YAML files, compare
// and stress-test the algorithms, archive and re-render runs, generate
// random trees and serve the HTTP API. The CLI is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
//   - partition: Partition a call tree with one algorithm
//   - compare: Run several algorithms on one tree side by side
//   - stress: Check the algorithms against the exhaustive baseline
//   - generate: Write a random call tree
//   - render: Redraw an archived run
//   - runs: List, show and delete archived runs
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
//
// # Configuration
//
// Defaults come from ~/.config/slambuc/config.toml or the file named by
// --config; flags given on the command line win.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Partitioned chain (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
