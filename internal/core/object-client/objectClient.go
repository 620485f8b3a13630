package objectclient

import (
	"context"
	"fmt"

	cfg "github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
)

// NewObjectClient picks the storage backend named by STORAGE_DRIVER.
func NewObjectClient(ctx context.Context, cfg *cfg.Config) (core.ObjectClient, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Client(ctx, cfg)
	case "minio":
		return NewMinioClient(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
