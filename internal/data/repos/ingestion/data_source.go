package ingestion

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/core"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const dataSourceEntity = "Data source"

type DataSourceRepo interface {
	Create(dbc dbctx.Context, ds *types.DataSource) error
	List(dbc dbctx.Context, orgID uuid.UUID, filter types.DataSourceFilter) ([]*types.DataSource, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.DataSource, error)
	// GetManyByIDs returns the active sources of orgID among ids. Missing ids are
	// simply absent from the result.
	GetManyByIDs(dbc dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*types.DataSource, error)
	Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.DataSourcePatch) (*types.DataSource, error)
	// ReplaceConnection switches the source to an API connection and swaps its
	// connection config, guarded by the config version read beforehand.
	ReplaceConnection(dbc dbctx.Context, orgID, id, connectorID uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error)
	SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error
}

type dataSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) DataSourceRepo {
	return &dataSourceRepo{db: db, log: baseLog.With("repo", "DataSourceRepo")}
}

func (r *dataSourceRepo) Create(dbc dbctx.Context, ds *types.DataSource) error {
	return base.Create(base.Conn(dbc, r.db), dataSourceEntity, ds)
}

func (r *dataSourceRepo) List(dbc dbctx.Context, orgID uuid.UUID, filter types.DataSourceFilter) ([]*types.DataSource, error) {
	q := base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID))
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.SourceType != nil {
		q = q.Where("source_type = ?", string(*filter.SourceType))
	}
	return base.Find[types.DataSource](q)
}

func (r *dataSourceRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.DataSource, error) {
	return base.First[types.DataSource](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), dataSourceEntity)
}

func (r *dataSourceRepo) GetManyByIDs(dbc dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*types.DataSource, error) {
	if len(ids) == 0 {
		return []*types.DataSource{}, nil
	}
	return base.Find[types.DataSource](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID)).Where("id IN ?", ids))
}

func (r *dataSourceRepo) Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.DataSourcePatch) (*types.DataSource, error) {
	if err := base.Update[types.DataSource](
		base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)),
		dataSourceEntity,
		patch.Columns(),
	); err != nil {
		return nil, err
	}
	return r.GetByID(dbc, orgID, id)
}

func (r *dataSourceRepo) ReplaceConnection(dbc dbctx.Context, orgID, id, connectorID uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
	return base.ReplaceVersionedWith[types.DataSource](
		base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)),
		"connection_config", "connection_config_version",
		expected, next,
		map[string]any{
			"source_type":      string(types.SourceTypeAPIConnection),
			"api_connector_id": connectorID,
		},
	)
}

func (r *dataSourceRepo) SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error {
	return base.SoftDelete[types.DataSource](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), dataSourceEntity)
}
