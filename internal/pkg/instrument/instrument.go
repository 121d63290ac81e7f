package instrument

import (
	"context"
	"math"
	"time"

	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "chat-archive"

func elapsedMs(start time.Time) float64 {
	return math.Round(float64(time.Since(start).Microseconds())/10) / 100
}

func startSpan(ctx context.Context, operation string, details map[string]interface{}) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, operation)
	for k, v := range details {
		span.SetAttributes(attribute.String(k, toString(v)))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Track runs fn as a named operation: <op>.started and <op>.completed are
// logged at info, <op>.failed at error, and a span covers the call. Request
// correlation ids from ctx are merged into every entry.
func Track[T any](ctx context.Context, log logger.ILogger, module, operation string, details map[string]interface{}, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := startSpan(ctx, operation, details)
	fields := requestctx.Fields(ctx, details)

	log.Info(module, operation+".started", fields)
	start := time.Now()

	result, err := fn(ctx)

	done := requestctx.Fields(ctx, fields)
	done["elapsed_ms"] = elapsedMs(start)
	if err != nil {
		done["error"] = err.Error()
		log.Error(module, operation+".failed", done)
	} else {
		log.Info(module, operation+".completed", done)
	}
	endSpan(span, err)
	return result, err
}

// Time is the debug-level counterpart of Track for storage calls: one
// <op>.completed entry with elapsed_ms, plus the error when there is one.
func Time[T any](ctx context.Context, log logger.ILogger, module, operation string, details map[string]interface{}, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := startSpan(ctx, operation, details)
	start := time.Now()

	result, err := fn(ctx)

	fields := requestctx.Fields(ctx, details)
	fields["elapsed_ms"] = elapsedMs(start)
	if err != nil {
		fields["error"] = err.Error()
	}
	log.Debug(module, operation+".completed", fields)
	endSpan(span, err)
	return result, err
}
