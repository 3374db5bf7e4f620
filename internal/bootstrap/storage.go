package bootstrap

import (
	"context"
	"fmt"

	"github.com/projecthub/submission-backend/config"
	"github.com/projecthub/submission-backend/internal/storage/blob"
)

func OpenBlobStore(ctx context.Context, cfg config.StorageConfig) (blob.Store, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return blob.NewS3Store(ctx, blob.S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	case config.StorageDriverLocal, "":
		return blob.NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
