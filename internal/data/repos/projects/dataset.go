package projects

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const datasetEntity = "Dataset"

type DatasetRepo interface {
	Create(dbc dbctx.Context, dataset *types.Dataset) error
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Dataset, error)
	GetByID(dbc dbctx.Context, projectID, id uuid.UUID) (*types.Dataset, error)
	// MaxVersion is the highest active version recorded for (projectID, name),
	// or 0 when there is none.
	MaxVersion(dbc dbctx.Context, projectID uuid.UUID, name string) (int, error)
	SoftDelete(dbc dbctx.Context, projectID, id uuid.UUID) error
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{db: db, log: baseLog.With("repo", "DatasetRepo")}
}

func (r *datasetRepo) Create(dbc dbctx.Context, dataset *types.Dataset) error {
	return base.Create(base.Conn(dbc, r.db), datasetEntity, dataset)
}

func (r *datasetRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Dataset, error) {
	return base.Find[types.Dataset](
		base.Conn(dbc, r.db).Where("project_id = ?", projectID).Order("name ASC, version DESC"),
	)
}

func (r *datasetRepo) GetByID(dbc dbctx.Context, projectID, id uuid.UUID) (*types.Dataset, error) {
	return base.First[types.Dataset](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)).Where("project_id = ?", projectID),
		datasetEntity,
	)
}

func (r *datasetRepo) MaxVersion(dbc dbctx.Context, projectID uuid.UUID, name string) (int, error) {
	var latest int
	err := base.Conn(dbc, r.db).
		Model(&types.Dataset{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Select("COALESCE(MAX(version), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	return latest, nil
}

func (r *datasetRepo) SoftDelete(dbc dbctx.Context, projectID, id uuid.UUID) error {
	return base.SoftDelete[types.Dataset](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)).Where("project_id = ?", projectID),
		datasetEntity,
	)
}
