// Package logging provides structured logging for CLI and GUI modes.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with mode-specific output selection.
type Logger struct {
	zlog zerolog.Logger
	mode string // "cli" or "gui"
}

// NewLogger creates a logger for the specified mode. CLI mode writes
// console-formatted lines to stdout; GUI mode writes to stderr so the
// webview process output stays readable during development.
func NewLogger(mode string) *Logger {
	var output io.Writer
	if mode == "cli" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	zlog := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog, mode: mode}
}

// NewGUILogger creates the default logger for the desktop app.
func NewGUILogger() *Logger {
	return NewLogger("gui")
}

// NewWriterLogger creates a logger for tests with a captured writer.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{zlog: zerolog.New(w), mode: "test"}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), mode: "nop"}
}

// Mode reports which output mode the logger was built for.
func (l *Logger) Mode() string {
	return l.mode
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// With returns a child logger carrying a component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("component", component).Logger(),
		mode: l.mode,
	}
}
