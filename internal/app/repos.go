package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type Repos struct {
	Organisation            repos.OrganisationRepo
	User                    repos.UserRepo
	DataSource              repos.DataSourceRepo
	Project                 repos.ProjectRepo
	ProjectDataSource       repos.ProjectDataSourceRepo
	ProcessingJob           repos.ProcessingJobRepo
	ProcessingJobDataSource repos.ProcessingJobDataSourceRepo
	Dataset                 repos.DatasetRepo
	CanonicalSchema         repos.CanonicalSchemaRepo
	ProcessingPipeline      repos.ProcessingPipelineRepo
	ApiConnector            repos.ApiConnectorRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Organisation:            repos.NewOrganisationRepo(db, log),
		User:                    repos.NewUserRepo(db, log),
		DataSource:              repos.NewDataSourceRepo(db, log),
		Project:                 repos.NewProjectRepo(db, log),
		ProjectDataSource:       repos.NewProjectDataSourceRepo(db, log),
		ProcessingJob:           repos.NewProcessingJobRepo(db, log),
		ProcessingJobDataSource: repos.NewProcessingJobDataSourceRepo(db, log),
		Dataset:                 repos.NewDatasetRepo(db, log),
		CanonicalSchema:         repos.NewCanonicalSchemaRepo(db, log),
		ProcessingPipeline:      repos.NewProcessingPipelineRepo(db, log),
		ApiConnector:            repos.NewApiConnectorRepo(db, log),
	}
}
