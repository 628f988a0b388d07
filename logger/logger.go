package logger

import "context"

// Fields is the set of structured key/value pairs attached to a log entry.
type Fields = map[string]interface{}

// Logger defines the interface for structured logging with context support.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info-level message with optional fields
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning-level message with optional fields
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error-level message with optional fields
	Error(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new logger with the given fields added to all subsequent log entries
	WithFields(fields Fields) Logger
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID. Loggers add it to
// every entry written with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request ID from the context.
func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
