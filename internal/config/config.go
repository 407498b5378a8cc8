package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/pkg/cache"
	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/storage"
	"github.com/JaimeStill/inspector/pkg/tracing"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvInspectorEnv             = "INSPECTOR_ENV"
	EnvInspectorShutdownTimeout = "INSPECTOR_SHUTDOWN_TIMEOUT"
	EnvInspectorVersion         = "INSPECTOR_VERSION"
)

// DatabaseEnv names the INSPECTOR_DB_* overrides; cmd/migrate shares it.
var DatabaseEnv = &database.Env{
	URL:             "INSPECTOR_DB_URL",
	Host:            "INSPECTOR_DB_HOST",
	Port:            "INSPECTOR_DB_PORT",
	Name:            "INSPECTOR_DB_NAME",
	User:            "INSPECTOR_DB_USER",
	Password:        "INSPECTOR_DB_PASSWORD",
	SSLMode:         "INSPECTOR_DB_SSL_MODE",
	MaxOpenConns:    "INSPECTOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INSPECTOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INSPECTOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INSPECTOR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:           "INSPECTOR_STORAGE_PROVIDER",
	PublicBaseURL:      "INSPECTOR_STORAGE_PUBLIC_BASE_URL",
	AzureContainerName: "INSPECTOR_STORAGE_AZURE_CONTAINER_NAME",
	AzureConnection:    "INSPECTOR_STORAGE_AZURE_CONNECTION_STRING",
	AzureAccountURL:    "INSPECTOR_STORAGE_AZURE_ACCOUNT_URL",
	AzureMaxRetries:    "INSPECTOR_STORAGE_AZURE_MAX_RETRIES",
	GCSBucket:          "INSPECTOR_STORAGE_GCS_BUCKET",
	GCSCredentialsFile: "INSPECTOR_STORAGE_GCS_CREDENTIALS_FILE",
	GCSCredentialsJSON: "INSPECTOR_STORAGE_GCS_CREDENTIALS_JSON",
}

var classifierEnv = &classifier.Env{
	Provider:              "INSPECTOR_CLASSIFIER_PROVIDER",
	LoadTimeout:           "INSPECTOR_CLASSIFIER_LOAD_TIMEOUT",
	LoadDelay:             "INSPECTOR_CLASSIFIER_LOAD_DELAY",
	VisionCredentialsFile: "INSPECTOR_CLASSIFIER_VISION_CREDENTIALS_FILE",
	VisionCredentialsJSON: "INSPECTOR_CLASSIFIER_VISION_CREDENTIALS_JSON",
}

var cacheEnv = &cache.Env{
	URL:    "INSPECTOR_CACHE_URL",
	TTL:    "INSPECTOR_CACHE_TTL",
	Prefix: "INSPECTOR_CACHE_PREFIX",
}

var tracingEnv = &tracing.Env{
	Exporter:    "INSPECTOR_TRACING_EXPORTER",
	Endpoint:    "INSPECTOR_TRACING_ENDPOINT",
	Insecure:    "INSPECTOR_TRACING_INSECURE",
	SampleRatio: "INSPECTOR_TRACING_SAMPLE_RATIO",
	ServiceName: "INSPECTOR_TRACING_SERVICE_NAME",
}

// Config is the root configuration for the Inspector service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         LoggingConfig     `toml:"logging"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Classifier      classifier.Config `toml:"classifier"`
	Cache           cache.Config      `toml:"cache"`
	Tracing         tracing.Config    `toml:"tracing"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the INSPECTOR_ENV value, defaulting to "production".
func (c *Config) Env() string {
	if env := os.Getenv(EnvInspectorEnv); env != "" {
		return env
	}
	return "production"
}

// Development reports whether the service runs in local or development mode.
// Development mode exposes server error detail and classifier debug output,
// so it must be selected explicitly.
func (c *Config) Development() bool {
	switch c.Env() {
	case "local", "development":
		return true
	}
	return false
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return parse(c.ShutdownTimeout)
}

// Load reads .env (if present) into the process environment, the base config
// (if present), applies any environment overlay, and finalizes all values.
// If no config.toml exists, defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Classifier.Merge(&overlay.Classifier)
	c.Cache.Merge(&overlay.Cache)
	c.Tracing.Merge(&overlay.Tracing)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides and validation to every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Tracing.Finalize(tracingEnv); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvInspectorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvInspectorVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvInspectorEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
