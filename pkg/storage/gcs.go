package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

const gcsPublicHost = "https://storage.googleapis.com"

type gcsStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

func newGCS(cfg *Config, logger *slog.Logger) (*gcsStore, error) {
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	switch {
	case cfg.GCS.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GCS.CredentialsJSON)))
	case cfg.GCS.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GCS.CredentialsFile))
	}

	client, err := gcs.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = gcsPublicHost + "/" + cfg.GCS.Bucket
	}

	return &gcsStore{
		client:  client,
		bucket:  cfg.GCS.Bucket,
		baseURL: base,
		logger:  logger,
	}, nil
}

func (g *gcsStore) Start(lc *lifecycle.Coordinator) error {
	g.logger.Info("starting storage system")

	lc.OnStartup("storage", func(ctx context.Context) error {
		if _, err := g.client.Bucket(g.bucket).Attrs(ctx); err != nil {
			g.logger.Error("storage bucket check failed", "bucket", g.bucket, "error", err)
			return fmt.Errorf("bucket %s: %w", g.bucket, err)
		}
		g.logger.Info("storage bucket ready", "bucket", g.bucket)
		return nil
	})

	lc.OnShutdown("storage", func(context.Context) error {
		return g.client.Close()
	})

	return nil
}

func (g *gcsStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}

	return g.URL(key), nil
}

func (g *gcsStore) URL(key string) string {
	return joinURL(g.baseURL, key)
}
