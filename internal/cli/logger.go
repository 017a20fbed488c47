package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger provides structured logging for CLI tools. Info is gated by
// Verbose and Debug by DebugMode; warnings and errors always pass.
type Logger struct {
	Verbose   bool
	DebugMode bool
	logger    *slog.Logger
}

// NewLogger creates a logger writing text records to stderr.
func NewLogger(verbose, debug bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose, debug, false)
}

// NewLoggerTo creates a logger writing to dest, as JSON when asJSON is set.
func NewLoggerTo(dest io.Writer, verbose, debug, asJSON bool) *Logger {
	if dest == nil {
		dest = os.Stderr
	}
	options := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(dest, options)
	} else {
		handler = slog.NewTextHandler(dest, options)
	}
	return &Logger{Verbose: verbose, DebugMode: debug, logger: slog.New(handler)}
}

// With returns a logger that adds the key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Verbose: l.Verbose, DebugMode: l.DebugMode, logger: l.logger.With(args...)}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		l.logger.Info(fmt.Sprintf(format, args...))
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, false, false, false)
}
