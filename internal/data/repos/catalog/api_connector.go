package catalog

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

const apiConnectorEntity = "API connector"

type ApiConnectorRepo interface {
	Create(dbc dbctx.Context, connector *types.ApiConnector) error
	List(dbc dbctx.Context) ([]*types.ApiConnector, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ApiConnector, error)
	GetByName(dbc dbctx.Context, name string) (*types.ApiConnector, error)
	ReplaceTemplate(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error)
}

type apiConnectorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApiConnectorRepo(db *gorm.DB, baseLog *logger.Logger) ApiConnectorRepo {
	return &apiConnectorRepo{db: db, log: baseLog.With("repo", "ApiConnectorRepo")}
}

func (r *apiConnectorRepo) Create(dbc dbctx.Context, connector *types.ApiConnector) error {
	return base.Create(base.Conn(dbc, r.db), apiConnectorEntity, connector)
}

func (r *apiConnectorRepo) List(dbc dbctx.Context) ([]*types.ApiConnector, error) {
	return base.Find[types.ApiConnector](base.Conn(dbc, r.db).Order("name ASC"))
}

func (r *apiConnectorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ApiConnector, error) {
	return base.First[types.ApiConnector](base.Conn(dbc, r.db).Scopes(base.ByID(id)), apiConnectorEntity)
}

func (r *apiConnectorRepo) GetByName(dbc dbctx.Context, name string) (*types.ApiConnector, error) {
	return base.First[types.ApiConnector](base.Conn(dbc, r.db).Where("name = ?", name), apiConnectorEntity)
}

func (r *apiConnectorRepo) ReplaceTemplate(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
	return base.ReplaceVersioned[types.ApiConnector](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)),
		"config_template", "config_template_version",
		expected, next,
	)
}
