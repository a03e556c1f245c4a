// Package logging carries request-scoped slog loggers through contexts so
// the scheduler's services can log with the request id attached by the HTTP
// layer.
package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger derives a context carrying logger. A nil logger leaves
// the context untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when none was
// attached. Callers fall back to their own logger on nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}
