package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/pkg/formatting"
	"github.com/JaimeStill/inspector/pkg/middleware"
	"github.com/JaimeStill/inspector/pkg/openapi"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

const defaultMaxUploadSize = classifier.MaxImageSize

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INSPECTOR_CORS_ENABLED",
	Origins:          "INSPECTOR_CORS_ORIGINS",
	AllowedMethods:   "INSPECTOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INSPECTOR_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INSPECTOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INSPECTOR_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultLimit: "INSPECTOR_PAGINATION_DEFAULT_LIMIT",
	MaxLimit:     "INSPECTOR_PAGINATION_MAX_LIMIT",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "INSPECTOR_OPENAPI_TITLE",
	Description: "INSPECTOR_OPENAPI_DESCRIPTION",
	ServerURL:   "INSPECTOR_OPENAPI_SERVER_URL",
}

// APIConfig holds API routing, upload, CORS, pagination and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("INSPECTOR_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("INSPECTOR_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	if size > classifier.MaxImageSize {
		return fmt.Errorf("max_upload_size %s exceeds the classifier limit of %s",
			c.MaxUploadSize, formatting.FormatBytes(classifier.MaxImageSize, 0))
	}
	return nil
}
