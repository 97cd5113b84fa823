package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// GCSStorage stores objects in a Google Cloud Storage bucket.
type GCSStorage struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger logger.Logger
}

func NewGCSStorage(ctx context.Context, cfg config.GCSConfig, log logger.Logger) (*GCSStorage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	bucket := client.Bucket(cfg.BucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket, name: cfg.BucketName, logger: log}, nil
}

func (g *GCSStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	w := g.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		g.logger.Error("Failed to store file to GCS",
			logger.String("bucket", g.name),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	// the object only becomes visible once the writer is closed
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return key, nil
}

func (g *GCSStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return r, nil
}

func (g *GCSStorage) Delete(ctx context.Context, key string) error {
	if err := g.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (g *GCSStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	it := g.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}
		if !attrs.Updated.Before(threshold) {
			continue
		}
		if err := g.Delete(ctx, attrs.Name); err != nil {
			g.logger.Error("Failed to delete expired object",
				logger.String("key", attrs.Name),
				logger.Error(err),
			)
			continue
		}
		g.logger.Info("Deleted expired object",
			logger.String("key", attrs.Name),
			logger.Time("lastModified", attrs.Updated),
		)
	}
}

func (g *GCSStorage) Close() error {
	return g.client.Close()
}
