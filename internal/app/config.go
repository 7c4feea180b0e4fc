package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/curator-backend/internal/data/db"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/crypto"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
	"github.com/yungbote/curator-backend/internal/services"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is resolved once at startup and passed to everything that needs it.
type Config struct {
	Env     string
	Port    int
	LogMode string

	DatabaseURL string
	DBDriver    db.Driver
	DBDSN       string

	JWTSecret     string
	TokenTTL      time.Duration
	AppURL        string
	EncryptionKey string

	RedisAddr       string
	RedisJobChannel string

	Storage objectstore.ObjectStorageConfig

	MaxUploadBytes     int64
	LoginRatePerSecond float64
	LoginRateBurst     int

	Otel           observability.OtelConfig
	MetricsEnabled bool
}

func (c Config) Production() bool { return c.Env == EnvProduction }

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("REDIS_JOB_CHANNEL", "processing_jobs")
	v.SetDefault("OBJECT_STORAGE_MODE", string(objectstore.ObjectStorageModeLocal))
	v.SetDefault("LOCAL_STORAGE_DIR", "./storage")
	v.SetDefault("MAX_UPLOAD_BYTES", services.DefaultMaxUploadBytes)
	v.SetDefault("LOGIN_RATE_PER_SECOND", 5)
	v.SetDefault("LOGIN_RATE_BURST", 10)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "curator-backend")
	v.SetDefault("OTEL_SAMPLER_RATIO", 1.0)
	v.SetDefault("METRICS_ENABLED", true)
}

// LoadConfig reads the environment and, when CONFIG_FILE names one, a yaml
// file whose keys match the variable names. Environment values win.
func LoadConfig() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	logMode := strings.TrimSpace(v.GetString("LOG_MODE"))
	if logMode == "" {
		logMode = env
	}

	cfg := Config{
		Env:     env,
		Port:    v.GetInt("PORT"),
		LogMode: logMode,

		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),

		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		AppURL:        strings.TrimSpace(v.GetString("APP_URL")),
		EncryptionKey: strings.TrimSpace(v.GetString("ENCRYPTION_KEY")),

		RedisAddr:       strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisJobChannel: strings.TrimSpace(v.GetString("REDIS_JOB_CHANNEL")),

		Storage: objectstore.ObjectStorageConfig{
			Mode:          objectstore.ParseObjectStorageMode(v.GetString("OBJECT_STORAGE_MODE")),
			LocalDir:      strings.TrimSpace(v.GetString("LOCAL_STORAGE_DIR")),
			EmulatorHost:  strings.TrimSpace(v.GetString("STORAGE_EMULATOR_HOST")),
			UploadBucket:  strings.TrimSpace(v.GetString("UPLOAD_BUCKET")),
			DatasetBucket: strings.TrimSpace(v.GetString("DATASET_BUCKET")),
			Credentials:   strings.TrimSpace(v.GetString("GCS_CREDENTIALS")),
		},

		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		LoginRatePerSecond: v.GetFloat64("LOGIN_RATE_PER_SECOND"),
		LoginRateBurst:     v.GetInt("LOGIN_RATE_BURST"),

		Otel: observability.OtelConfig{
			Enabled:        v.GetBool("OTEL_ENABLED"),
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			Environment:    env,
			Version:        v.GetString("APP_VERSION"),
			Endpoint:       strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
			Headers:        observability.ParseHeaders(v.GetString("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:       v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio:    v.GetFloat64("OTEL_SAMPLER_RATIO"),
			StdoutFallback: env == EnvDevelopment,
		},
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}

	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolve validates every field and fills the derived ones. All problems are
// reported together.
func (c *Config) resolve() error {
	var errs []error

	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535"))
	}

	driver, dsn, err := db.ResolveDriver(c.DatabaseURL)
	if err != nil {
		errs = append(errs, err)
	}
	c.DBDriver, c.DBDSN = driver, dsn

	switch {
	case c.JWTSecret == "":
		errs = append(errs, fmt.Errorf("JWT_SECRET is required"))
	case len(c.JWTSecret) < 32:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least 32 characters"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be a positive duration"))
	}

	if c.AppURL == "" {
		errs = append(errs, fmt.Errorf("APP_URL is required"))
	} else if u, err := url.Parse(c.AppURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("APP_URL must be an http(s) URL"))
	}

	if c.EncryptionKey == "" {
		if c.Production() {
			errs = append(errs, fmt.Errorf("ENCRYPTION_KEY is required in production"))
		}
	} else if _, err := crypto.NewCipherFromHex(c.EncryptionKey); err != nil {
		errs = append(errs, fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters"))
	}

	if c.RedisAddr != "" && c.RedisJobChannel == "" {
		errs = append(errs, fmt.Errorf("REDIS_JOB_CHANNEL cannot be empty when REDIS_ADDR is set"))
	}
	if err := objectstore.ValidateObjectStorageConfig(c.Storage); err != nil {
		errs = append(errs, err)
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.LoginRatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_PER_SECOND must be positive"))
	}
	if c.LoginRateBurst < 1 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_BURST must be at least 1"))
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLER_RATIO must be between 0 and 1"))
	}

	return errors.Join(errs...)
}
