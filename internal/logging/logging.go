package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DebugEnv is the environment variable that switches on debug output
const DebugEnv = "STICKY_DEBUG"

// DebugEnabled returns true if debug mode is enabled via STICKY_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Level returns the log level implied by the environment and the verbose flag
func Level(verbose bool) slog.Level {
	if DebugEnabled() {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// New creates a text logger writing to w at the given level
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Component returns a child logger tagged with the component name
func Component(l *slog.Logger, name string) *slog.Logger {
	return OrDiscard(l).With("component", name)
}

// Debugf prints a formatted debug message to stderr only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(os.Stderr, args...)
	}
}
