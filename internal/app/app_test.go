package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/curator-backend/internal/data/db"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

func TestNewWithConfigServesHealth(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Env:       EnvTest,
		Port:      8080,
		LogMode:   "test",
		DBDriver:  db.DriverSQLite,
		DBDSN:     "file:" + filepath.Join(dir, "app.db"),
		JWTSecret: strings.Repeat("k", 32),
		TokenTTL:  time.Hour,
		AppURL:    "http://localhost:3000",
		Storage: objectstore.ObjectStorageConfig{
			Mode:     objectstore.ObjectStorageModeLocal,
			LocalDir: filepath.Join(dir, "storage"),
		},
		MaxUploadBytes:     1 << 20,
		LoginRatePerSecond: 5,
		LoginRateBurst:     10,
		MetricsEnabled:     true,
	}

	a, err := NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Close)

	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("protected route: status=%d", rec.Code)
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown before run: %v", err)
	}
}
