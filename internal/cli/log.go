// Package cli implements the pinboard command-line interface.
//
// Board files are the native JSON documents written by pkg/io. Fragments
// are IIIF canvases as produced by export and accepted by import. The
// commands fall into three groups:
//   - file tools: export, import, render, arrange, route
//   - the interactive editor: edit
//   - sharing: push, pull, list, serve, mcp
//
// Settings come from pinboard.toml or pinboard.yaml, see pkg/config.
// --verbose switches the logger to debug level, which also reports cache
// traffic and board mutations through the observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timer logs how long an operation took once it is done.
type timer struct {
	logger *log.Logger
	start  time.Time
}

func startTimer(l *log.Logger) *timer {
	return &timer{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time and any extra key/value pairs.
func (t *timer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside of it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
