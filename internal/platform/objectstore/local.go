package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

// localBucketService stores objects under <root>/<category>/<key>. It backs
// development setups and tests that run without GCS.
type localBucketService struct {
	log  *logger.Logger
	root string
}

func NewLocalBucketService(log *logger.Logger, root string) (BucketService, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	serviceLog := log.With("service", "LocalBucketService")
	serviceLog.Info("Object storage initialized", "mode", ObjectStorageModeLocal, "root", abs)
	return &localBucketService{log: serviceLog, root: abs}, nil
}

func (bs *localBucketService) path(category BucketCategory, key string) (string, error) {
	switch category {
	case BucketCategoryUpload, BucketCategoryDataset:
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(bs.root, string(category), filepath.FromSlash(key)), nil
}

func (bs *localBucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	p, err := bs.path(category, key)
	if err != nil {
		return err
	}
	if err := dbc.Context().Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close object: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

func (bs *localBucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	p, err := bs.path(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (bs *localBucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	p, err := bs.path(category, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (bs *localBucketService) GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	p, err := bs.path(category, key)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &ObjectAttrs{Size: st.Size(), ContentType: contentTypeForKey(key), Updated: st.ModTime()}, nil
}
