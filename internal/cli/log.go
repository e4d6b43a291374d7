// Package cli implements the bitter command-line interface.
//
// The commands drive a headless compositor session built from a TOML scene
// file (see package scene), or a live session configured through viper.
//
// # Commands
//
// The main commands are:
//   - layout: Print the tile boxes computed for a scene
//   - render: Render a scene to PNG, or to a wireframe SVG
//   - tree: Export an output's partition tree as DOT or SVG
//   - serve: Run a live headless session with an HTTP control API
//   - preview: Explore a scene interactively in the terminal
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/bitter/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "15:04:05.00" timestamps that writes to w
// at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// applyConfiguredLevel lowers l's level to the configured one when that is
// more verbose. A --verbose flag therefore always wins, and unknown names are
// ignored.
func applyConfiguredLevel(l *log.Logger, name string) bool {
	lvl, err := log.ParseLevel(name)
	if err != nil || lvl >= l.GetLevel() {
		return false
	}
	l.SetLevel(lvl)
	return true
}

// progress logs the elapsed time of one operation. Not safe for concurrent
// use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to milliseconds, e.g.
// "Rendered 2 frame(s) on 1 output(s) (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
