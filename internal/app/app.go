package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curator-backend/internal/data/db"
	httpapi "github.com/yungbote/curator-backend/internal/http"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Server   *httpapi.Server

	shutdownOtel func(context.Context) error
}

// New loads configuration, connects every backing store and wires the HTTP
// server. Nothing listens until Run.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	response.ExposeInternalErrors(cfg.Env == EnvDevelopment)

	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(log)
	}

	database, err := db.NewService(log, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		_ = database.Close()
		log.Sync()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(database.DB(), log)
	serviceset := wireServices(database.DB(), log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(log, database.DB(), cfg, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           database,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		shutdownOtel: shutdownOtel,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", a.Cfg.Addr(), "env", a.Cfg.Env, "db_driver", a.Cfg.DBDriver)
	return a.Server.Run(a.Cfg.Addr())
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Failed to close database", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(context.Background()); err != nil {
			a.Log.Warn("Failed to flush traces", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
