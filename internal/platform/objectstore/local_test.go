package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

func newLocal(t *testing.T) BucketService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	bs, err := NewLocalBucketService(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBucketService: %v", err)
	}
	return bs
}

func TestLocalBucketServiceLifecycle(t *testing.T) {
	bs := newLocal(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	key := "organisations/o1/data-sources/a.csv"

	if err := bs.UploadFile(dbc, BucketCategoryUpload, key, strings.NewReader("id,name\n1,a\n")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	attrs, err := bs.GetObjectAttrs(ctx, BucketCategoryUpload, key)
	if err != nil {
		t.Fatalf("GetObjectAttrs: %v", err)
	}
	if attrs.Size != int64(len("id,name\n1,a\n")) || attrs.ContentType != "text/csv" {
		t.Fatalf("unexpected attrs: %+v", attrs)
	}

	rc, err := bs.DownloadFile(ctx, BucketCategoryUpload, key)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "id,name\n1,a\n" {
		t.Fatalf("body mismatch: %q", body)
	}

	if _, err := bs.DownloadFile(ctx, BucketCategoryDataset, key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("categories must be isolated, got %v", err)
	}
	if err := bs.DeleteFile(dbc, BucketCategoryUpload, key); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := bs.DeleteFile(dbc, BucketCategoryUpload, key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("second delete: want ErrObjectNotFound got %v", err)
	}
}

func TestLocalBucketServiceRejectsTraversal(t *testing.T) {
	bs := newLocal(t)
	err := bs.UploadFile(dbctx.Context{Ctx: context.Background()}, BucketCategoryUpload, "../escape.csv", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}
