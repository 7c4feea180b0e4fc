package projects

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const projectDataSourceEntity = "Project data source"

// ProjectDataSourceRepo is scoped by project; callers check the project's
// organisation before reaching it.
type ProjectDataSourceRepo interface {
	Create(dbc dbctx.Context, link *types.ProjectDataSource) error
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ProjectDataSource, error)
	GetByPair(dbc dbctx.Context, projectID, dataSourceID uuid.UUID) (*types.ProjectDataSource, error)
	SoftDelete(dbc dbctx.Context, projectID, id uuid.UUID) error
}

type projectDataSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) ProjectDataSourceRepo {
	return &projectDataSourceRepo{db: db, log: baseLog.With("repo", "ProjectDataSourceRepo")}
}

func (r *projectDataSourceRepo) Create(dbc dbctx.Context, link *types.ProjectDataSource) error {
	return base.Create(base.Conn(dbc, r.db), projectDataSourceEntity, link)
}

func (r *projectDataSourceRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ProjectDataSource, error) {
	return base.Find[types.ProjectDataSource](
		base.Conn(dbc, r.db).Where("project_id = ?", projectID).Order("created_at ASC"),
	)
}

func (r *projectDataSourceRepo) GetByPair(dbc dbctx.Context, projectID, dataSourceID uuid.UUID) (*types.ProjectDataSource, error) {
	return base.First[types.ProjectDataSource](
		base.Conn(dbc, r.db).Where("project_id = ? AND data_source_id = ?", projectID, dataSourceID),
		projectDataSourceEntity,
	)
}

func (r *projectDataSourceRepo) SoftDelete(dbc dbctx.Context, projectID, id uuid.UUID) error {
	return base.SoftDelete[types.ProjectDataSource](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)).Where("project_id = ?", projectID),
		projectDataSourceEntity,
	)
}
