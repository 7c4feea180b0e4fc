package domain

import (
	"github.com/yungbote/curator-backend/internal/domain/catalog"
	"github.com/yungbote/curator-backend/internal/domain/ingestion"
	"github.com/yungbote/curator-backend/internal/domain/jobs"
	"github.com/yungbote/curator-backend/internal/domain/projects"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
)

type Organisation = tenancy.Organisation
type User = tenancy.User
type Role = tenancy.Role
type UserPatch = tenancy.UserPatch

type CanonicalSchema = catalog.CanonicalSchema
type ProcessingPipeline = catalog.ProcessingPipeline
type ApiConnector = catalog.ApiConnector
type SchemaCategory = catalog.SchemaCategory

type DataSource = ingestion.DataSource
type DataSourceStatus = ingestion.Status
type SourceType = ingestion.SourceType
type DataSourceFilter = ingestion.DataSourceFilter
type DataSourcePatch = ingestion.DataSourcePatch

const SourceTypeAPIConnection = ingestion.SourceTypeAPIConnection

type Project = projects.Project
type ProjectDataSource = projects.ProjectDataSource
type Dataset = projects.Dataset
type ProjectStatus = projects.Status
type ProjectFilter = projects.ProjectFilter
type ProjectPatch = projects.ProjectPatch
type ConfigField = projects.ConfigField

type ProcessingJob = jobs.ProcessingJob
type ProcessingJobDataSource = jobs.ProcessingJobDataSource
type JobStatus = jobs.Status
type JobFilter = jobs.JobFilter
type ConfigSnapshot = jobs.ConfigSnapshot

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&Organisation{},
		&User{},
		&CanonicalSchema{},
		&ProcessingPipeline{},
		&ApiConnector{},
		&DataSource{},
		&Project{},
		&ProjectDataSource{},
		&ProcessingJob{},
		&ProcessingJobDataSource{},
		&Dataset{},
	}
}
