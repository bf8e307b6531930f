package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/config"
	"google.golang.org/api/option"
)

const (
	DriverGCS   = "gcs"
	DriverLocal = "local"
)

// Uploader publishes a local file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, objectName string) (string, error)
}

// NewUploader builds the uploader selected by cfg.Driver. The returned close
// func releases the underlying client.
func NewUploader(ctx context.Context, cfg config.StorageConfig) (Uploader, func() error, error) {
	switch cfg.Driver {
	case DriverGCS:
		if cfg.Bucket == "" {
			return nil, nil, fmt.Errorf("storage.bucket is required for the gcs driver")
		}
		client, err := gcs.NewClient(ctx, gcsClientOptions(cfg)...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gcs client: %w", err)
		}
		logrus.WithFields(logrus.Fields{"project": cfg.Project, "bucket": cfg.Bucket}).Info("GCS uploader configured")
		return NewGCSUploader(client, cfg.Bucket), client.Close, nil
	case "", DriverLocal:
		return NewFileStorage(cfg.LocalPath, cfg.BaseURL+FilesRoute), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// gcsClientOptions only bills a quota project when one is set explicitly;
// storage.project alone adds no request headers.
func gcsClientOptions(cfg config.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.QuotaProject != "" {
		opts = append(opts, option.WithQuotaProject(cfg.QuotaProject))
	}
	return opts
}
