package noop

import (
	"context"

	"github.com/fortified-go/fortifiedhttp/pkg/observability"
)

// New returns a no-op Logger with zero runtime overhead, for callers
// (like a bare engine.Engine, or fortifiedhttp.New() with no
// WithLogger) that need the Logger slot filled but want logging
// disabled entirely.
func New() observability.Logger {
	return &noopLogger{}
}

// noopLogger implements observability.Logger with no-op operations.
type noopLogger struct{}

func (l *noopLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) Note(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) Warning(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *noopLogger) With(fields ...observability.Field) observability.Logger {
	return l
}

func (l *noopLogger) LoggerPath() string { return "noop" }

func (l *noopLogger) LevelName() string { return "none" }
