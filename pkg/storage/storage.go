// Package storage is the image store: it persists uploaded images and
// returns a publicly fetchable URL. Azure Blob Storage and Google Cloud
// Storage are supported.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

// System manages image storage and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to key and returns the object's public URL.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// URL returns the public URL for key without contacting the provider.
	URL(key string) string
}

// New creates the configured provider. Clients are constructed eagerly;
// containers and buckets are checked when Start runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderGCS:
		return newGCS(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
