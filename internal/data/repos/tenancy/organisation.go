package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const organisationEntity = "Organisation"

type OrganisationRepo interface {
	Create(dbc dbctx.Context, org *types.Organisation) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organisation, error)
	GetByName(dbc dbctx.Context, name string) (*types.Organisation, error)
	UpdateName(dbc dbctx.Context, id uuid.UUID, name string) (*types.Organisation, error)
}

type organisationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganisationRepo(db *gorm.DB, baseLog *logger.Logger) OrganisationRepo {
	return &organisationRepo{db: db, log: baseLog.With("repo", "OrganisationRepo")}
}

func (r *organisationRepo) Create(dbc dbctx.Context, org *types.Organisation) error {
	return base.Create(base.Conn(dbc, r.db), organisationEntity, org)
}

func (r *organisationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organisation, error) {
	return base.First[types.Organisation](base.Conn(dbc, r.db).Scopes(base.ByID(id)), organisationEntity)
}

func (r *organisationRepo) GetByName(dbc dbctx.Context, name string) (*types.Organisation, error) {
	return base.First[types.Organisation](base.Conn(dbc, r.db).Where("name = ?", name), organisationEntity)
}

func (r *organisationRepo) UpdateName(dbc dbctx.Context, id uuid.UUID, name string) (*types.Organisation, error) {
	if err := base.Update[types.Organisation](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)),
		organisationEntity,
		map[string]any{"name": name},
	); err != nil {
		return nil, err
	}
	return r.GetByID(dbc, id)
}
