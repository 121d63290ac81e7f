package tracer

import (
	"context"

	"chat-archive/internal/config"
	"chat-archive/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const ServiceName = "chat-archive"

// InitTracer installs an OTLP/HTTP tracer provider when telemetry is enabled
// and returns its shutdown function. Disabled or failed setups return a no-op
// so spans opened by the instrument package cost nothing.
func InitTracer(cfg config.TelemetryConfig, log logger.ILogger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		log.Info("tracer", "tracing.disabled", map[string]interface{}{"hint": "set OTEL_ENABLED=true to enable"})
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OtlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("tracer", "tracing.exporter_failed", map[string]interface{}{"error": err.Error()})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("tracer", "tracing.initialized", map[string]interface{}{"endpoint": cfg.OtlpEndpoint})

	return tp.Shutdown
}
