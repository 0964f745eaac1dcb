package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type loggerContextKey struct {
	name string
}

var loggerCtxKey = &loggerContextKey{"logger"}

func NewLogger(ctx context.Context, serviceName, serviceVersion string) (context.Context, zerolog.Logger) {
	return NewLoggerWithWriter(ctx, os.Stdout, serviceName, serviceVersion)
}

func NewLoggerWithWriter(ctx context.Context, w io.Writer, serviceName, serviceVersion string) (context.Context, zerolog.Logger) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := log.Output(w).With().Timestamp().Str("service", strings.ToLower(serviceName)).Str("version", serviceVersion).Logger()
	ctx = NewContextWithLogger(ctx, logger)
	return ctx, logger
}

func NewContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	ctx = context.WithValue(ctx, loggerCtxKey, logger)
	return ctx
}

func GetLoggerFromContext(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(zerolog.Logger)

	if !ok {
		return log.Logger
	}

	return logger
}

// AddTraceIDToLoggerAndStoreInContext decorates the logger with the trace id of the
// span, if it has one, and stores the result in the returned context.
func AddTraceIDToLoggerAndStoreInContext(span trace.Span, logger zerolog.Logger, ctx context.Context) (string, context.Context, zerolog.Logger) {
	traceID := span.SpanContext().TraceID()
	if traceID.IsValid() {
		logger = logger.With().Str("traceID", traceID.String()).Logger()
	}

	ctx = NewContextWithLogger(ctx, logger)

	return traceID.String(), ctx, logger
}
