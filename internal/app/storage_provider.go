package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

var newBucketService = objectstore.New

type StorageProviderBootstrapErrorCode string

const StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
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

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveBucketService(log *logger.Logger, cfg objectstore.ObjectStorageConfig) (objectstore.BucketService, error) {
	log.Info(
		"Selecting object storage provider",
		"mode", cfg.Mode,
		"local_dir", cfg.LocalDir,
		"emulator_host", cfg.EmulatorHost,
	)

	bucket, err := newBucketService(log, cfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", cfg.Mode,
			"emulator_host", cfg.EmulatorHost,
			"error_code", classified.Code,
			"error", err,
		)
		return nil, classified
	}
	return bucket, nil
}

// classifyStorageProviderBootstrapError keeps config error codes and files
// everything else under connect_failed.
func classifyStorageProviderBootstrapError(cfg objectstore.ObjectStorageConfig, err error) *StorageProviderBootstrapError {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *objectstore.ObjectStorageConfigError
	if errors.As(err, &cfgErr) && cfgErr.Code != "" {
		code = StorageProviderBootstrapErrorCode(cfgErr.Code)
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        err,
	}
}
