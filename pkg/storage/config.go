package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Provider names.
const (
	ProviderAzure = "azure"
	ProviderGCS   = "gcs"
)

// Config selects and configures the image store provider.
// PublicBaseURL, when set, replaces the provider's object URL prefix (e.g. a CDN).
type Config struct {
	Provider      string      `toml:"provider"`
	PublicBaseURL string      `toml:"public_base_url"`
	Azure         AzureConfig `toml:"azure"`
	GCS           GCSConfig   `toml:"gcs"`
}

// AzureConfig holds Azure Blob Storage parameters. ConnectionString takes
// precedence; otherwise AccountURL is used with the default Azure credential chain.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	MaxRetries       int32  `toml:"max_retries"`
}

// GCSConfig holds Google Cloud Storage parameters. Without credentials the
// application default credentials are used.
type GCSConfig struct {
	Bucket          string `toml:"bucket"`
	CredentialsFile string `toml:"credentials_file"`
	CredentialsJSON string `toml:"credentials_json"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider           string
	PublicBaseURL      string
	AzureContainerName string
	AzureConnection    string
	AzureAccountURL    string
	AzureMaxRetries    string
	GCSBucket          string
	GCSCredentialsFile string
	GCSCredentialsJSON string
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.AccountURL != "" {
		c.Azure.AccountURL = overlay.Azure.AccountURL
	}
	if overlay.Azure.MaxRetries != 0 {
		c.Azure.MaxRetries = overlay.Azure.MaxRetries
	}
	if overlay.GCS.Bucket != "" {
		c.GCS.Bucket = overlay.GCS.Bucket
	}
	if overlay.GCS.CredentialsFile != "" {
		c.GCS.CredentialsFile = overlay.GCS.CredentialsFile
	}
	if overlay.GCS.CredentialsJSON != "" {
		c.GCS.CredentialsJSON = overlay.GCS.CredentialsJSON
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "inspections"
	}
	if c.Azure.MaxRetries == 0 {
		c.Azure.MaxRetries = 3
	}
}

func (c *Config) loadEnv(env *Env) {
	lookup := func(dst *string, key string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	lookup(&c.Provider, env.Provider)
	lookup(&c.PublicBaseURL, env.PublicBaseURL)
	lookup(&c.Azure.ContainerName, env.AzureContainerName)
	lookup(&c.Azure.ConnectionString, env.AzureConnection)
	lookup(&c.Azure.AccountURL, env.AzureAccountURL)
	lookup(&c.GCS.Bucket, env.GCSBucket)
	lookup(&c.GCS.CredentialsFile, env.GCSCredentialsFile)
	lookup(&c.GCS.CredentialsJSON, env.GCSCredentialsJSON)

	if env.AzureMaxRetries != "" {
		if v := os.Getenv(env.AzureMaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				c.Azure.MaxRetries = int32(n)
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.Azure.ContainerName == "" {
			return fmt.Errorf("azure.container_name required")
		}
		if c.Azure.ConnectionString == "" && c.Azure.AccountURL == "" {
			return fmt.Errorf("azure.connection_string or azure.account_url required")
		}
	case ProviderGCS:
		if c.GCS.Bucket == "" {
			return fmt.Errorf("gcs.bucket required")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderAzure, ProviderGCS)
	}
	return nil
}
