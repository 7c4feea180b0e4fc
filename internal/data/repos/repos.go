package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/catalog"
	"github.com/yungbote/curator-backend/internal/data/repos/ingestion"
	"github.com/yungbote/curator-backend/internal/data/repos/jobs"
	"github.com/yungbote/curator-backend/internal/data/repos/projects"
	"github.com/yungbote/curator-backend/internal/data/repos/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type OrganisationRepo = tenancy.OrganisationRepo
type UserRepo = tenancy.UserRepo
type UserFilter = tenancy.UserFilter

type DataSourceRepo = ingestion.DataSourceRepo

type ProjectRepo = projects.ProjectRepo
type ProjectDataSourceRepo = projects.ProjectDataSourceRepo
type DatasetRepo = projects.DatasetRepo

type ProcessingJobRepo = jobs.ProcessingJobRepo
type ProcessingJobDataSourceRepo = jobs.ProcessingJobDataSourceRepo
type JobStatusChange = jobs.StatusChange

type CanonicalSchemaRepo = catalog.CanonicalSchemaRepo
type ProcessingPipelineRepo = catalog.ProcessingPipelineRepo
type ApiConnectorRepo = catalog.ApiConnectorRepo

func NewOrganisationRepo(db *gorm.DB, baseLog *logger.Logger) OrganisationRepo {
	return tenancy.NewOrganisationRepo(db, baseLog)
}
func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return tenancy.NewUserRepo(db, baseLog) }

func NewDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) DataSourceRepo {
	return ingestion.NewDataSourceRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return projects.NewProjectRepo(db, baseLog)
}
func NewProjectDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) ProjectDataSourceRepo {
	return projects.NewProjectDataSourceRepo(db, baseLog)
}
func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return projects.NewDatasetRepo(db, baseLog)
}

func NewProcessingJobRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingJobRepo {
	return jobs.NewProcessingJobRepo(db, baseLog)
}
func NewProcessingJobDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingJobDataSourceRepo {
	return jobs.NewProcessingJobDataSourceRepo(db, baseLog)
}

func NewCanonicalSchemaRepo(db *gorm.DB, baseLog *logger.Logger) CanonicalSchemaRepo {
	return catalog.NewCanonicalSchemaRepo(db, baseLog)
}
func NewProcessingPipelineRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingPipelineRepo {
	return catalog.NewProcessingPipelineRepo(db, baseLog)
}
func NewApiConnectorRepo(db *gorm.DB, baseLog *logger.Logger) ApiConnectorRepo {
	return catalog.NewApiConnectorRepo(db, baseLog)
}
