package tracing

import (
	"fmt"
	"os"
	"strconv"
)

// Exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds OpenTelemetry tracing parameters. Tracing is disabled when
// Exporter is "none".
type Config struct {
	Exporter    string  `toml:"exporter"`
	Endpoint    string  `toml:"endpoint"`
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
	ServiceName string  `toml:"service_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Exporter    string
	Endpoint    string
	Insecure    string
	SampleRatio string
	ServiceName string
}

// Enabled reports whether spans are exported.
func (c *Config) Enabled() bool {
	return c.Exporter != ExporterNone
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Exporter != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Insecure {
		c.Insecure = true
	}
	if overlay.SampleRatio != 0 {
		c.SampleRatio = overlay.SampleRatio
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
}

func (c *Config) loadDefaults() {
	if c.Exporter == "" {
		c.Exporter = ExporterNone
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
	if c.ServiceName == "" {
		c.ServiceName = "inspector"
	}
}

func (c *Config) loadEnv(env *Env) {
	get := func(key string) string {
		if key == "" {
			return ""
		}
		return os.Getenv(key)
	}

	if v := get(env.Exporter); v != "" {
		c.Exporter = v
	}
	if v := get(env.Endpoint); v != "" {
		c.Endpoint = v
	}
	if v := get(env.Insecure); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Insecure = b
		}
	}
	if v := get(env.SampleRatio); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SampleRatio = f
		}
	}
	if v := get(env.ServiceName); v != "" {
		c.ServiceName = v
	}
}

func (c *Config) validate() error {
	switch c.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required for otlp exporter")
		}
	default:
		return fmt.Errorf("unknown exporter %q", c.Exporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1]")
	}
	return nil
}
