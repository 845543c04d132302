package taskrun

import (
	"context"

	"github.com/rs/zerolog"
)

type logKey struct{}

var nopLogger = zerolog.Nop()

func log(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(logKey{}).(*zerolog.Logger)
	if !ok {
		return &nopLogger
	}

	return logger
}

// WithLogger attaches the given logger to the context
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}
