package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/curator-backend/internal/domain/tenancy"
	httpH "github.com/yungbote/curator-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curator-backend/internal/http/middleware"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	AppURL      string
	Production  bool

	Metrics        *observability.Metrics
	LoginLimiter   *httpMW.IPRateLimiter
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler            *httpH.HealthHandler
	AuthHandler              *httpH.AuthHandler
	OrganisationHandler      *httpH.OrganisationHandler
	UserHandler              *httpH.UserHandler
	ProjectHandler           *httpH.ProjectHandler
	ProjectDataSourceHandler *httpH.ProjectDataSourceHandler
	ProcessingJobHandler     *httpH.ProcessingJobHandler
	DatasetHandler           *httpH.DatasetHandler
	DataSourceHandler        *httpH.DataSourceHandler
	CatalogHandler           *httpH.CatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AppURL, cfg.Production))
	r.Use(httpMW.Metrics(cfg.Metrics))
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.ValidateUUIDParams())

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, apierr.NotFound("Route"))
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		login := []gin.HandlerFunc{}
		if cfg.LoginLimiter != nil {
			login = append(login, httpMW.RateLimit(cfg.LoginLimiter))
		}
		login = append(login, cfg.AuthHandler.Login)
		api.POST("/auth/login", login...)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware == nil {
		return r
	}
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	admin := cfg.AuthMiddleware.RequireRole(tenancy.RoleAdmin)

	// Auth (protected)
	if cfg.AuthHandler != nil {
		protected.GET("/auth/session", cfg.AuthHandler.Session)
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	// Organisation
	if cfg.OrganisationHandler != nil {
		protected.GET("/organisations/current", cfg.OrganisationHandler.GetCurrent)
		protected.PATCH("/organisations/current", admin, cfg.OrganisationHandler.UpdateCurrent)
	}

	// Users
	if cfg.UserHandler != nil {
		protected.POST("/users", admin, cfg.UserHandler.Create)
		protected.GET("/users", cfg.UserHandler.List)
		protected.GET("/users/:id", cfg.UserHandler.Get)
		protected.PATCH("/users/:id", admin, cfg.UserHandler.Update)
		protected.DELETE("/users/:id", admin, cfg.UserHandler.Delete)
	}

	// Projects
	if cfg.ProjectHandler != nil {
		protected.POST("/projects", cfg.ProjectHandler.Create)
		protected.GET("/projects", cfg.ProjectHandler.List)
		protected.GET("/projects/:projectId", cfg.ProjectHandler.Get)
		protected.GET("/projects/:projectId/overview", cfg.ProjectHandler.Overview)
		protected.PATCH("/projects/:projectId", cfg.ProjectHandler.Update)
		protected.DELETE("/projects/:projectId", cfg.ProjectHandler.Delete)
		protected.PATCH("/projects/:projectId/field-mapping", cfg.ProjectHandler.UpdateFieldMapping)
		protected.PATCH("/projects/:projectId/de-identification", cfg.ProjectHandler.UpdateDeIdentification)
	}
	if cfg.ProjectDataSourceHandler != nil {
		protected.POST("/projects/:projectId/data-sources", cfg.ProjectDataSourceHandler.Add)
		protected.GET("/projects/:projectId/data-sources", cfg.ProjectDataSourceHandler.List)
		protected.DELETE("/projects/:projectId/data-sources/:associationId", cfg.ProjectDataSourceHandler.Remove)
	}

	// Processing jobs
	if cfg.ProcessingJobHandler != nil {
		protected.POST("/projects/:projectId/processing-jobs", cfg.ProcessingJobHandler.Create)
		protected.GET("/projects/:projectId/processing-jobs", cfg.ProcessingJobHandler.List)
		protected.GET("/projects/:projectId/processing-jobs/:jobId", cfg.ProcessingJobHandler.Get)
		protected.GET("/projects/:projectId/processing-jobs/:jobId/data-sources", cfg.ProcessingJobHandler.ListDataSources)
		protected.POST("/projects/:projectId/processing-jobs/:jobId/retry", cfg.ProcessingJobHandler.Retry)
		protected.PATCH("/projects/:projectId/processing-jobs/:jobId/status", admin, cfg.ProcessingJobHandler.UpdateStatus)
	}

	// Datasets
	if cfg.DatasetHandler != nil {
		protected.GET("/projects/:projectId/datasets", cfg.DatasetHandler.List)
		protected.POST("/projects/:projectId/datasets", admin, cfg.DatasetHandler.Record)
		protected.GET("/projects/:projectId/datasets/:datasetId", cfg.DatasetHandler.Get)
		protected.GET("/projects/:projectId/datasets/:datasetId/download", cfg.DatasetHandler.Download)
		protected.DELETE("/projects/:projectId/datasets/:datasetId", cfg.DatasetHandler.Delete)
	}

	// Data sources
	if cfg.DataSourceHandler != nil {
		protected.POST("/data-sources", cfg.DataSourceHandler.Create)
		protected.GET("/data-sources", cfg.DataSourceHandler.List)
		protected.GET("/data-sources/:id", cfg.DataSourceHandler.Get)
		protected.PATCH("/data-sources/:id", cfg.DataSourceHandler.Update)
		protected.DELETE("/data-sources/:id", cfg.DataSourceHandler.Delete)
		protected.POST("/data-sources/:id/api-connection", cfg.DataSourceHandler.CreateApiConnection)
	}

	// Catalog
	if cfg.CatalogHandler != nil {
		protected.GET("/canonical-schemas", cfg.CatalogHandler.ListSchemas)
		protected.GET("/canonical-schemas/:id", cfg.CatalogHandler.GetSchema)
		protected.GET("/processing-pipelines", cfg.CatalogHandler.ListPipelines)
		protected.GET("/processing-pipelines/:id", cfg.CatalogHandler.GetPipeline)
		protected.GET("/api-connectors", cfg.CatalogHandler.ListConnectors)
		protected.GET("/api-connectors/:id", cfg.CatalogHandler.GetConnector)
	}

	return r
}
