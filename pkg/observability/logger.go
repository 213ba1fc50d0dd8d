package observability

import "context"

// LogLevel represents the severity level of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger provides structured logging capabilities with trace context propagation.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs an info-level message with optional structured fields.
	Info(ctx context.Context, msg string, fields ...Field)

	// Note logs a level between Info and Warn: noteworthy but not a
	// problem on its own (a retry that still succeeded, a fallback path
	// taken). Ported from the original taxonomy's distinct "note" level,
	// which this tree's otherwise four-level Logger had no slot for.
	Note(ctx context.Context, msg string, fields ...Field)

	// Warn logs a warning-level message with optional structured fields.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Warning is an alias for Warn, named to match the taxonomy this
	// module's logging was ported from.
	Warning(ctx context.Context, msg string, fields ...Field)

	// Error logs an error-level message with optional structured fields.
	Error(ctx context.Context, msg string, fields ...Field)

	// With creates a child logger with additional fields that will be included in all log entries.
	With(fields ...Field) Logger

	// LoggerPath identifies the logger's provider/sink, e.g. "zaplog" or
	// "noop", for diagnostics that need to know what's actually wired.
	LoggerPath() string

	// LevelName returns the name of the minimum level this logger emits.
	LevelName() string
}
