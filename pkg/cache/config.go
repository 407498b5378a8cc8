package cache

import (
	"fmt"
	"os"
	"time"
)

// Config holds Redis cache parameters. The cache is disabled when URL is empty.
type Config struct {
	URL    string `toml:"url"`
	TTL    string `toml:"ttl"`
	Prefix string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL    string
	TTL    string
	Prefix string
}

// Enabled reports whether a Redis URL is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
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
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.TTL == "" {
		c.TTL = "30s"
	}
	if c.Prefix == "" {
		c.Prefix = "inspector"
	}
}

func (c *Config) loadEnv(env *Env) {
	for dst, key := range map[*string]string{
		&c.URL:    env.URL,
		&c.TTL:    env.TTL,
		&c.Prefix: env.Prefix,
	} {
		if key == "" {
			continue
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}
