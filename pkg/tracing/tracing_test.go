package tracing_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
	"github.com/JaimeStill/inspector/pkg/tracing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigDefaults(t *testing.T) {
	cfg := tracing.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Exporter != tracing.ExporterNone || cfg.SampleRatio != 1 || cfg.ServiceName != "inspector" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Enabled() {
		t.Error("tracing should be disabled by default")
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_TRACING_EXPORTER", "otlp")
	t.Setenv("TEST_TRACING_ENDPOINT", "collector:4318")
	t.Setenv("TEST_TRACING_INSECURE", "true")
	t.Setenv("TEST_TRACING_SAMPLE_RATIO", "0.25")

	cfg := tracing.Config{}
	err := cfg.Finalize(&tracing.Env{
		Exporter:    "TEST_TRACING_EXPORTER",
		Endpoint:    "TEST_TRACING_ENDPOINT",
		Insecure:    "TEST_TRACING_INSECURE",
		SampleRatio: "TEST_TRACING_SAMPLE_RATIO",
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Exporter != tracing.ExporterOTLP || cfg.Endpoint != "collector:4318" || !cfg.Insecure || cfg.SampleRatio != 0.25 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  tracing.Config
	}{
		{"unknown exporter", tracing.Config{Exporter: "jaeger"}},
		{"otlp without endpoint", tracing.Config{Exporter: tracing.ExporterOTLP}},
		{"ratio out of range", tracing.Config{SampleRatio: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewDisabled(t *testing.T) {
	cfg := tracing.Config{}
	cfg.Finalize(nil)

	sys, err := tracing.New(&cfg, "0.1.0", discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sys.Enabled() {
		t.Error("disabled config should yield a no-op provider")
	}

	_, span := sys.Tracer("test").Start(context.Background(), "op")
	if span.SpanContext().IsValid() {
		t.Error("no-op spans should carry an invalid span context")
	}
	span.End()

	lc := lifecycle.New()
	sys.Start(lc)
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewStdout(t *testing.T) {
	cfg := tracing.Config{Exporter: tracing.ExporterStdout}
	cfg.Finalize(nil)

	sys, err := tracing.New(&cfg, "0.1.0", discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !sys.Enabled() {
		t.Error("stdout exporter should enable tracing")
	}

	lc := lifecycle.New()
	sys.Start(lc)
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
