package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ResolveDriver maps a DATABASE_URL onto a driver and the DSN that driver expects.
func ResolveDriver(databaseURL string) (Driver, string, error) {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(raw, "sqlite://"), nil
	case strings.HasPrefix(raw, "file:"):
		return DriverSQLite, raw, nil
	case raw == "":
		return "", "", fmt.Errorf("DATABASE_URL is required")
	default:
		return "", "", fmt.Errorf("DATABASE_URL must start with postgres://, postgresql://, sqlite:// or file:")
	}
}

type Service struct {
	db     *gorm.DB
	driver Driver
	log    *logger.Logger
}

func NewService(logg *logger.Logger, driver Driver, dsn string) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService", "driver", driver)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gdb, err := Open(driver, dsn, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, err
	}
	serviceLog.Info("Database connected")
	return &Service{db: gdb, driver: driver, log: serviceLog}, nil
}

// Open connects with the given driver. SQLite is pinned to one connection so
// in-memory databases stay shared across the pool.
func Open(driver Driver, dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	switch driver {
	case DriverPostgres:
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		return gdb, nil
	case DriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() Driver { return s.driver }

func (s *Service) Migrate() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := EnsureActiveUniqueIndexes(s.db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
