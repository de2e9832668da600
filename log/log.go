// Package log provides structured logging for the synchronizer. It wraps
// log/slog with a per-subsystem child-logger convenience, the same shape
// the teacher's own logging package uses.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with synchronizer-specific context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes text to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler,
// useful for tests that want to capture or silence output.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the package-level default logger, the one Debug/Info/
// Warn/Error and Warnf write through. Callers that want a tagged child
// logger without threading one through a constructor call Default().Module(...).
func Default() *Logger { return defaultLogger }

// Module returns a child logger tagged with the given subsystem name (e.g.
// "proof", "reverse-apply").
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Phase logs a synchronizer phase transition at LevelInfo. A phase is
// anything with a String method — PhaseKind in package sync — so this
// package stays free of a direct import on the synchronizer's types.
func (l *Logger) Phase(kind fmt.Stringer, args ...any) {
	l.inner.Info("sync: phase transition", append([]any{"phase", kind.String()}, args...)...)
}

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Warnf formats msg with args printf-style and logs it at LevelWarn. Use
// this from call sites (like panic-recovery paths) that already have a
// pre-formatted string rather than structured key/value pairs.
func Warnf(format string, args ...any) { defaultLogger.Warn(fmt.Sprintf(format, args...)) }
