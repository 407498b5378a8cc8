package infrastructure_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=inspectorstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/inspectorstore;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(config.EnvInspectorEnv, "test")

	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Name = "inspector"
	cfg.Database.User = "inspector"
	cfg.Database.Password = "inspector"
	cfg.Storage.Azure.ConnectionString = azuriteConnString

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Classifier == nil {
		t.Error("Classifier is nil")
	}
	if infra.Cache == nil {
		t.Error("Cache is nil")
	}
	if infra.Tracing == nil {
		t.Error("Tracing is nil")
	}
}

func TestNewDefaultsAreInert(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Cache.Enabled() {
		t.Error("cache enabled without a URL")
	}
	if infra.Classifier.Status().Loaded {
		t.Error("classifier loaded before Start")
	}

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.Azure.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewInvalidCacheURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.Cache.URL = "http://localhost:6379"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for non-redis cache URL")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		log    func(*slog.Logger)
		want   string
		absent bool
	}{
		{
			name: "json",
			cfg:  config.LoggingConfig{Level: "info", Format: "json"},
			log:  func(l *slog.Logger) { l.Info("inspected", "line", "qc-3") },
			want: `"line":"qc-3"`,
		},
		{
			name: "text",
			cfg:  config.LoggingConfig{Level: "info", Format: "text"},
			log:  func(l *slog.Logger) { l.Info("inspected", "line", "qc-3") },
			want: "line=qc-3",
		},
		{
			name:   "level filters debug",
			cfg:    config.LoggingConfig{Level: "warn", Format: "text"},
			log:    func(l *slog.Logger) { l.Debug("hidden") },
			want:   "hidden",
			absent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(infrastructure.NewLogger(&tt.cfg, &buf))

			got := strings.Contains(buf.String(), tt.want)
			if got == tt.absent {
				t.Errorf("output %q, want contains %q = %v", buf.String(), tt.want, !tt.absent)
			}
		})
	}
}
