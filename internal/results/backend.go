package results

import (
	"context"
	"fmt"
	"os"

	"github.com/lucasprac/dea-choquet/pkg/config"
)

// OpenStorage builds the StorageClient selected by cfg.Backend. The local
// backend falls back to defaultDir when cfg.Dir is empty. S3 credentials are
// read from S3_ACCESS_KEY and S3_SECRET_KEY when set, otherwise the AWS
// default chain applies.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, defaultDir string) (StorageClient, error) {
	switch cfg.Backend {
	case "", "local":
		dir := cfg.Dir
		if dir == "" {
			dir = defaultDir
		}
		return NewLocalStorage(dir), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		})
	case "gcs":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("gcs storage requires a bucket")
		}
		return NewGCSStorage(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want local, s3 or gcs)", cfg.Backend)
	}
}
