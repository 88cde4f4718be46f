// Package logging builds the structured logger shared by the CLI and the
// analysis service.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// Timestamps prefixes each line with the time.
	Timestamps bool
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Timestamps,
		Prefix:          "accessorlint",
	})
	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// ParseLevel maps a level name to a log level, defaulting to warn.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
