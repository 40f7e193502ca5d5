package colgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with colgo-specific context.
// This provides structured logging with consistent field names.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", table),
	}
}

// WithSource adds a source identifier field to the logger.
func (l *Logger) WithSource(identifier string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", identifier),
	}
}

// LogIngest logs an ingestion operation.
func (l *Logger) LogIngest(ctx context.Context, table string, rows, columns, nodes int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ingest failed",
			"table", table,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "ingest completed",
			"table", table,
			"rows", rows,
			"columns", columns,
			"nodes", nodes,
			"took", took,
		)
	}
}

// LogDump logs a debug dump operation.
func (l *Logger) LogDump(ctx context.Context, table string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dump failed",
			"table", table,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "dump completed",
			"table", table,
		)
	}
}
