package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/curator-backend/internal/data/db"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

const validKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "sqlite://curator.db")
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("APP_URL", "https://curator.example.com")
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("LOCAL_STORAGE_DIR", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port: got=%d", cfg.Port)
	}
	if cfg.DBDriver != db.DriverSQLite || cfg.DBDSN != "curator.db" {
		t.Fatalf("driver: got=%s dsn=%s", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.TokenTTL != 168*time.Hour {
		t.Fatalf("token ttl: got=%s", cfg.TokenTTL)
	}
	if cfg.Storage.Mode != objectstore.ObjectStorageModeLocal {
		t.Fatalf("storage mode: got=%s", cfg.Storage.Mode)
	}
	if cfg.MaxUploadBytes != 100<<20 {
		t.Fatalf("max upload: got=%d", cfg.MaxUploadBytes)
	}
	if cfg.LoginRatePerSecond != 5 || cfg.LoginRateBurst != 10 {
		t.Fatalf("login rate: got=%v/%d", cfg.LoginRatePerSecond, cfg.LoginRateBurst)
	}
	if cfg.RedisJobChannel != "processing_jobs" {
		t.Fatalf("job channel: got=%s", cfg.RedisJobChannel)
	}
	if cfg.LogMode != "development" || cfg.Production() {
		t.Fatalf("env: mode=%s production=%v", cfg.LogMode, cfg.Production())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/curator")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "12h")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ENCRYPTION_KEY", validKey)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != db.DriverPostgres || cfg.Port != 9090 || cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Production() || cfg.Addr() != ":9090" {
		t.Fatalf("production=%v addr=%s", cfg.Production(), cfg.Addr())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_SECRET", "")

	path := filepath.Join(t.TempDir(), "curator.yaml")
	body := "JWT_SECRET: " + strings.Repeat("f", 40) + "\nLOGIN_RATE_BURST: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LoginRateBurst != 3 || len(cfg.JWTSecret) != 40 {
		t.Fatalf("file values not applied: burst=%d secret=%d", cfg.LoginRateBurst, len(cfg.JWTSecret))
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database", map[string]string{"DATABASE_URL": ""}, "DATABASE_URL is required"},
		{"unknown database", map[string]string{"DATABASE_URL": "mysql://x"}, "DATABASE_URL must start with"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET must be at least 32 characters"},
		{"bad app url", map[string]string{"APP_URL": "ftp://x"}, "APP_URL must be an http(s) URL"},
		{"missing app url", map[string]string{"APP_URL": ""}, "APP_URL is required"},
		{"bad key", map[string]string{"ENCRYPTION_KEY": "abcd"}, "ENCRYPTION_KEY must be 64 hex characters"},
		{"production without key", map[string]string{"APP_ENV": "production"}, "ENCRYPTION_KEY is required in production"},
		{"bad env", map[string]string{"APP_ENV": "staging"}, "APP_ENV must be one of"},
		{"bad storage mode", map[string]string{"OBJECT_STORAGE_MODE": "s3"}, "invalid OBJECT_STORAGE_MODE"},
		{"gcs without buckets", map[string]string{"OBJECT_STORAGE_MODE": "gcs"}, "requires UPLOAD_BUCKET and DATASET_BUCKET"},
		{"bad port", map[string]string{"PORT": "70000"}, "PORT must be between 1 and 65535"},
		{"bad sampler", map[string]string{"OTEL_SAMPLER_RATIO": "2"}, "OTEL_SAMPLER_RATIO must be between 0 and 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setValidEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
