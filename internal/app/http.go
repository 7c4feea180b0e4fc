package app

import (
	"gorm.io/gorm"
	"golang.org/x/time/rate"

	httpapi "github.com/yungbote/curator-backend/internal/http"
	httpH "github.com/yungbote/curator-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curator-backend/internal/http/middleware"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type Middleware struct {
	Auth         *httpMW.AuthMiddleware
	LoginLimiter *httpMW.IPRateLimiter
}

type Handlers struct {
	Health            *httpH.HealthHandler
	Auth              *httpH.AuthHandler
	Organisation      *httpH.OrganisationHandler
	User              *httpH.UserHandler
	Project           *httpH.ProjectHandler
	ProjectDataSource *httpH.ProjectDataSourceHandler
	ProcessingJob     *httpH.ProcessingJobHandler
	Dataset           *httpH.DatasetHandler
	DataSource        *httpH.DataSourceHandler
	Catalog           *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:            httpH.NewHealthHandler(log, db),
		Auth:              httpH.NewAuthHandler(services.Auth),
		Organisation:      httpH.NewOrganisationHandler(services.Organisation),
		User:              httpH.NewUserHandler(services.User),
		Project:           httpH.NewProjectHandler(services.Project),
		ProjectDataSource: httpH.NewProjectDataSourceHandler(services.ProjectDataSource),
		ProcessingJob:     httpH.NewProcessingJobHandler(services.ProcessingJob),
		Dataset:           httpH.NewDatasetHandler(log, services.Dataset),
		DataSource:        httpH.NewDataSourceHandler(services.DataSource, cfg.MaxUploadBytes),
		Catalog:           httpH.NewCatalogHandler(services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:         httpMW.NewAuthMiddleware(log, services.Auth),
		LoginLimiter: httpMW.NewIPRateLimiter(rate.Limit(cfg.LoginRatePerSecond), cfg.LoginRateBurst),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		AppURL:      cfg.AppURL,
		Production:  cfg.Production(),

		Metrics:        metrics,
		LoginLimiter:   middleware.LoginLimiter,
		AuthMiddleware: middleware.Auth,

		HealthHandler:            handlers.Health,
		AuthHandler:              handlers.Auth,
		OrganisationHandler:      handlers.Organisation,
		UserHandler:              handlers.User,
		ProjectHandler:           handlers.Project,
		ProjectDataSourceHandler: handlers.ProjectDataSource,
		ProcessingJobHandler:     handlers.ProcessingJob,
		DatasetHandler:           handlers.Dataset,
		DataSourceHandler:        handlers.DataSource,
		CatalogHandler:           handlers.Catalog,
	})
}
