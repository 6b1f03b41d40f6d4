package app

import (
	"context"
	"fmt"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/gcp"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

var newBucket = gcp.NewBucket

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidConfig StorageBootstrapErrorCode = "invalid_config"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucket returns nil without error when no bucket is configured.
func resolveBucket(ctx context.Context, log *logger.Logger, cfg gcp.BucketConfig) (*gcp.Bucket, error) {
	if cfg.Name == "" {
		log.Warn("GCS_BUCKET not set; coloring pages are returned inline as data URLs")
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, storageBootstrapFailure(log, cfg, StorageBootstrapErrorInvalidConfig, err)
	}

	log.Info("Selecting object storage provider", "bucket", cfg.Name, "mode", cfg.Mode, "emulator_host", cfg.EmulatorHost)
	bucket, err := newBucket(ctx, log, cfg)
	if err != nil {
		return nil, storageBootstrapFailure(log, cfg, StorageBootstrapErrorConnectFailed, err)
	}
	return bucket, nil
}

func storageBootstrapFailure(log *logger.Logger, cfg gcp.BucketConfig, code StorageBootstrapErrorCode, cause error) error {
	err := &StorageBootstrapError{
		Code:         code,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        cause,
	}
	log.Error("Object storage provider bootstrap failed", "mode", cfg.Mode, "error_code", code, "error", cause)
	return err
}
