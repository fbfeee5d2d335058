// Package ctxlog carries the run's *slog.Logger through context.Context.
package ctxlog

import (
	"context"
	"log/slog"

	"detekt/internal/slogutil"
)

type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx. Contexts without one get a
// discard logger so library code never has to nil-check.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return slogutil.NewDiscardLogger()
}
