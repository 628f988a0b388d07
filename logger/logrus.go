package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures a LogrusLogger.
type Options struct {
	// Level is one of logrus' level names. Unknown values fall back to info.
	Level string
	// Format is "json" (default) or "text".
	Format string
	// Output defaults to stdout.
	Output io.Writer
}

// LogrusLogger wraps a logrus logger to implement the Logger interface.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a new LogrusLogger.
func NewLogrusLogger(opts Options) *LogrusLogger {
	base := logrus.New()

	switch strings.ToLower(opts.Format) {
	case "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		base.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.Output != nil {
		base.SetOutput(opts.Output)
	} else {
		base.SetOutput(os.Stdout)
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

// Debug logs a debug-level message.
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Debug(msg)
}

// Info logs an info-level message.
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Info(msg)
}

// Warn logs a warning-level message.
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Warn(msg)
}

// Error logs an error-level message.
func (l *LogrusLogger) Error(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Error(msg)
}

// WithFields returns a new logger with the given fields added.
func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

func (l *LogrusLogger) with(ctx context.Context, fields Fields) *logrus.Entry {
	entry := l.entry
	if id, ok := RequestID(ctx); ok {
		entry = entry.WithField("request_id", id)
	}
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	return entry
}
