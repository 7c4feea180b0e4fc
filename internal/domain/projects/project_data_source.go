package projects

import (
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

// ProjectDataSource links a data source into a project. At most one active link
// exists per (project, data source) pair.
type ProjectDataSource struct {
	core.Record
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index;column:project_id" json:"projectId"`
	DataSourceID uuid.UUID `gorm:"type:uuid;not null;index;column:data_source_id" json:"dataSourceId"`
}

func (ProjectDataSource) TableName() string { return "project_data_sources" }
