package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestLoggerKey struct{}

// WithRequest derives the per-request logger, tagged with request_id, and
// stores it in ctx.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := base
	if requestID != "" {
		l = base.With(zap.String("request_id", requestID))
	}
	return context.WithValue(ctx, requestLoggerKey{}, l), l
}

// WithCategory tags the request logger with the petition category being
// served. Without a request logger or category ctx is returned unchanged.
func WithCategory(ctx context.Context, category string) context.Context {
	l, ok := ctx.Value(requestLoggerKey{}).(*zap.Logger)
	if !ok || category == "" {
		return ctx
	}
	return context.WithValue(ctx, requestLoggerKey{}, l.With(zap.String("category", category)))
}

// FromContext returns the request logger, or fallback outside a request.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(requestLoggerKey{}).(*zap.Logger); ok {
		return l
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
