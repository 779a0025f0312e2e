package storage

import (
	"context"
	"fmt"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/infrastructure/config"
	infraprinting "github.com/edi/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverFilesystem = "filesystem"
	DriverS3         = "s3"
)

// NewContentStore builds the content store selected by cfg.Driver
func NewContentStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (printing.ContentStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", DriverFilesystem:
		store, err := infraprinting.NewFileSystemStore(cfg.BasePath, logger.Named("storage"))
		if err != nil {
			return nil, err
		}
		logger.Info("Using filesystem document store", zap.String("path", store.BasePath()))
		return store, nil
	case DriverS3:
		store, err := NewS3ContentStore(ctx, cfg.S3, WithLogger(logger.Named("storage")))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 document store", zap.String("bucket", store.Bucket()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
