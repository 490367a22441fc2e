package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/typedensity/typedensity/pkg/config"
)

// Open returns the Client selected by cfg. defaultDir is used by the local
// backend when cfg names no base directory.
func Open(ctx context.Context, cfg config.StorageConfig, defaultDir string) (Client, error) {
	switch cfg.Backend {
	case "", "local":
		dir := cfg.BaseDir
		if dir == "" {
			dir = defaultDir
		}
		return NewLocalStorage(dir), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	case "badger":
		dir := cfg.BaseDir
		if dir == "" {
			dir = filepath.Join(defaultDir, "badger")
		}
		return NewBadgerStorage(dir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// Close releases c if its backend holds resources.
func Close(c Client) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
