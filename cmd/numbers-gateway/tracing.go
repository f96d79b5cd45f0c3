package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "numbers-gateway"

// initTracing instala o TracerProvider global quando OTEL_ENABLED=true.
// Sem endpoint OTLP, os spans vão para stdout. Desligado, devolve um
// shutdown que não faz nada e os spans seguem no provider no-op.
func initTracing(ctx context.Context, cfg config, logger zerolog.Logger) (func(context.Context) error, error) {
	if !cfg.otelEnabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := buildTraceExporter(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	tp := newTracerProvider(exporter, cfg)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info().Str("service", serviceName).Str("endpoint", cfg.otelEndpoint).Msg("otel tracing initialized")
	return tp.Shutdown, nil
}

func newTracerProvider(exporter sdktrace.SpanExporter, cfg config) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", cfg.mode),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.otelSampleRatio))),
		sdktrace.WithResource(res),
	)
}

func buildTraceExporter(ctx context.Context, cfg config, stdout io.Writer) (sdktrace.SpanExporter, error) {
	if cfg.otelEndpoint == "" {
		return stdouttrace.New(stdouttrace.WithWriter(stdout))
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.otelEndpoint)}
	if cfg.otelInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}
