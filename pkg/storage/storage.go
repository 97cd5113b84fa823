package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/storage/gcs"
	"github.com/hyperon-hyeon/Graphear/pkg/storage/local"
	"github.com/hyperon-hyeon/Graphear/pkg/storage/minio"
	"github.com/hyperon-hyeon/Graphear/pkg/storage/s3"
)

// StorageType names a storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
	StorageTypeGCS   StorageType = "gcs"
)

// Storage holds uploaded PDFs and conversion results by key. Writing an existing
// key replaces it. Get returns an error wrapping models.ErrNotFound for unknown keys.
type Storage interface {
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects last modified before threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage builds the backend selected by cfg.Type.
func NewStorage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Storage, error) {
	log = log.Named("storage")
	switch StorageType(cfg.Type) {
	case StorageTypeLocal, "":
		return local.NewLocalStorage(cfg.LocalDir, log)
	case StorageTypeS3:
		return s3.NewS3Storage(ctx, cfg.S3, log)
	case StorageTypeMinio:
		return minio.NewMinioStorage(ctx, cfg.Minio, log)
	case StorageTypeGCS:
		return gcs.NewGCSStorage(ctx, cfg.GCS, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
