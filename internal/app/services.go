package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/services"
)

type Services struct {
	Auth              services.AuthService
	Organisation      services.OrganisationService
	User              services.UserService
	DataSource        services.DataSourceService
	Project           services.ProjectService
	ProjectDataSource services.ProjectDataSourceService
	ProcessingJob     services.ProcessingJobService
	Dataset           services.DatasetService
	Catalog           services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	notifier := services.NewJobNotifier(log, c.JobPublisher, metrics)
	return Services{
		Auth:         services.NewAuthService(log, r.User, r.Organisation, c.Revocations, cfg.JWTSecret, cfg.TokenTTL),
		Organisation: services.NewOrganisationService(log, r.Organisation),
		User:         services.NewUserService(log, r.User),
		DataSource: services.NewDataSourceService(
			log, r.DataSource, r.ApiConnector, c.Bucket, c.Cipher, metrics, cfg.MaxUploadBytes,
		),
		Project: services.NewProjectService(
			log, r.Project, r.ProjectDataSource, r.ProcessingJob, r.Dataset, r.CanonicalSchema, r.ProcessingPipeline,
		),
		ProjectDataSource: services.NewProjectDataSourceService(log, r.Project, r.DataSource, r.ProjectDataSource),
		ProcessingJob: services.NewProcessingJobService(
			db, log, r.Project, r.DataSource, r.ProcessingJob, r.ProcessingJobDataSource, notifier,
		),
		Dataset: services.NewDatasetService(
			db, log, r.Project, r.ProcessingJob, r.CanonicalSchema, r.Dataset, c.Bucket,
		),
		Catalog: services.NewCatalogService(
			log, r.Organisation, r.User, r.CanonicalSchema, r.ProcessingPipeline, r.ApiConnector,
		),
	}
}
