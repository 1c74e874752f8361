package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with datacleaner-specific helpers.
// This keeps field names consistent across the engine, server and CLI.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON lines to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// New picks a text or JSON logger from the format name ("json" or anything else).
func New(w io.Writer, format string, level slog.Level) *Logger {
	if strings.EqualFold(format, "json") {
		return NewJSONLogger(w, level)
	}
	return NewTextLogger(w, level)
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithSession adds a session id field to the logger.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogOperation logs a completed cleaning operation.
func (l *Logger) LogOperation(ctx context.Context, op string, rowsBefore, rowsAfter, colsBefore, colsAfter int) {
	l.DebugContext(ctx, "operation completed",
		"operation", op,
		"rows_before", rowsBefore,
		"rows_after", rowsAfter,
		"columns_before", colsBefore,
		"columns_after", colsAfter,
	)
}

// LogRequest logs a served HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, elapsed time.Duration) {
	if status >= 500 {
		l.ErrorContext(ctx, "request failed",
			"method", method,
			"path", path,
			"status", status,
			"elapsed", elapsed,
		)
		return
	}
	l.InfoContext(ctx, "request served",
		"method", method,
		"path", path,
		"status", status,
		"elapsed", elapsed,
	)
}

// LogEviction logs a session leaving the registry.
func (l *Logger) LogEviction(ctx context.Context, id string) {
	l.DebugContext(ctx, "session evicted",
		"session", id,
	)
}
