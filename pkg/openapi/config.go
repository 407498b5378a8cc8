package openapi

import "os"

// Config holds document metadata. ServerURL, when set, is advertised instead
// of the API base path, for deployments behind a proxy that rewrites paths.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ServerURL   string `toml:"server_url"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Inspector API"
	}
	if c.Description == "" {
		c.Description = "Manufacturing quality inspection: image classification, product and defect records, and production statistics."
	}
	if env != nil {
		c.Merge(&Config{
			Title:       getenv(env.Title),
			Description: getenv(env.Description),
			ServerURL:   getenv(env.ServerURL),
		})
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.Title:       overlay.Title,
		&c.Description: overlay.Description,
		&c.ServerURL:   overlay.ServerURL,
	} {
		if src != "" {
			*dst = src
		}
	}
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
