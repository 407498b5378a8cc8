// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// System provides tracers and flushes spans on shutdown.
type System interface {
	// Start registers the shutdown flush with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Tracer returns a named tracer.
	Tracer(name string) trace.Tracer
	// Enabled reports whether spans are exported.
	Enabled() bool
}

type tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
	logger   *slog.Logger
}

// New builds a tracer provider from cfg and installs it, with the W3C trace
// context and baggage propagators, as the global provider. A disabled config
// yields a no-op provider.
func New(cfg *Config, version string, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "tracing")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled() {
		return &tracing{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
			logger:   logger,
		}, nil
	}

	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(version),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint, "sample_ratio", cfg.SampleRatio)

	return &tracing{
		provider: tp,
		shutdown: tp.Shutdown,
		logger:   logger,
	}, nil
}

func newExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func (t *tracing) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown("tracing", func(ctx context.Context) error {
		if err := t.shutdown(ctx); err != nil {
			t.logger.Error("tracer shutdown failed", "error", err)
			return err
		}
		return nil
	})
	return nil
}

func (t *tracing) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

func (t *tracing) Enabled() bool {
	_, ok := t.provider.(*sdktrace.TracerProvider)
	return ok
}
