package logging

import (
	"context"
	"log/slog"
)

type runIDKey struct{}

// WithRunID stores the invocation identifier on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the invocation identifier stored by WithRunID.
func RunID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns logger tagged with the run identifier from ctx, if any.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunID(ctx); ok {
		return logger.With(String(FieldRunID, id))
	}
	return logger
}
