package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type BucketCategory string

const (
	// BucketCategoryUpload holds raw data-source uploads.
	BucketCategoryUpload BucketCategory = "upload"
	// BucketCategoryDataset holds processed dataset files written by workers.
	BucketCategoryDataset BucketCategory = "dataset"
)

var ErrObjectNotFound = errors.New("object not found")

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error)
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
}

// New selects the backend for cfg.Mode.
func New(log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ObjectStorageModeLocal:
		return NewLocalBucketService(log, cfg.LocalDir)
	default:
		return NewGCSBucketService(log, cfg)
	}
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".csv"):
		return "text/csv"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	case strings.HasSuffix(s, ".jsonl"):
		return "application/x-ndjson"
	case strings.HasSuffix(s, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

func validateKey(key string) error {
	k := strings.TrimSpace(key)
	if k == "" {
		return fmt.Errorf("object key required")
	}
	if strings.HasPrefix(k, "/") || strings.Contains(k, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}

// readCloserWithCancel releases the download context only once the caller closes
// the reader.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}
