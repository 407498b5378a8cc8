package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "INSPECTOR_SERVER_HOST"
	EnvServerPort              = "INSPECTOR_SERVER_PORT"
	EnvServerReadTimeout       = "INSPECTOR_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "INSPECTOR_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "INSPECTOR_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "INSPECTOR_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "INSPECTOR_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Durations are Go duration strings.
// WriteTimeout bounds a whole /inspect round trip (upload, inference, persistence).
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeouts returns the parsed read, read-header, write and idle timeouts.
func (c *ServerConfig) Timeouts() (read, readHeader, write, idle time.Duration) {
	return parse(c.ReadTimeout), parse(c.ReadHeaderTimeout), parse(c.WriteTimeout), parse(c.IdleTimeout)
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parse(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, src := range c.durations(overlay) {
		if src != "" {
			*dst = src
		}
	}
}

func (c *ServerConfig) durations(from *ServerConfig) map[*string]string {
	return map[*string]string{
		&c.ReadTimeout:       from.ReadTimeout,
		&c.ReadHeaderTimeout: from.ReadHeaderTimeout,
		&c.WriteTimeout:      from.WriteTimeout,
		&c.IdleTimeout:       from.IdleTimeout,
		&c.ShutdownTimeout:   from.ShutdownTimeout,
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	c.Merge(&ServerConfig{
		ReadTimeout:       or(c.ReadTimeout, "1m"),
		ReadHeaderTimeout: or(c.ReadHeaderTimeout, "10s"),
		WriteTimeout:      or(c.WriteTimeout, "2m"),
		IdleTimeout:       or(c.IdleTimeout, "2m"),
		ShutdownTimeout:   or(c.ShutdownTimeout, "30s"),
	})
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	c.Merge(&ServerConfig{
		ReadTimeout:       os.Getenv(EnvServerReadTimeout),
		ReadHeaderTimeout: os.Getenv(EnvServerReadHeaderTimeout),
		WriteTimeout:      os.Getenv(EnvServerWriteTimeout),
		IdleTimeout:       os.Getenv(EnvServerIdleTimeout),
		ShutdownTimeout:   os.Getenv(EnvServerShutdownTimeout),
	})
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":        c.ReadTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
		"shutdown_timeout":    c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func parse(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
