package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const userEntity = "User"

type UserFilter struct {
	Role *types.Role
}

type UserRepo interface {
	Create(dbc dbctx.Context, user *types.User) error
	List(dbc dbctx.Context, orgID uuid.UUID, filter UserFilter) ([]*types.User, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.User, error)
	// GetByEmail searches every organisation; emails are globally unique among
	// active users.
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.UserPatch) (*types.User, error)
	SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, user *types.User) error {
	return base.Create(base.Conn(dbc, r.db), userEntity, user)
}

func (r *userRepo) List(dbc dbctx.Context, orgID uuid.UUID, filter UserFilter) ([]*types.User, error) {
	q := base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID))
	if filter.Role != nil {
		q = q.Where("role = ?", string(*filter.Role))
	}
	return base.Find[types.User](q)
}

func (r *userRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.User, error) {
	return base.First[types.User](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), userEntity)
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	return base.First[types.User](base.Conn(dbc, r.db).Where("email = ?", email), userEntity)
}

func (r *userRepo) Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.UserPatch) (*types.User, error) {
	if err := base.Update[types.User](
		base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)),
		userEntity,
		patch.Columns(),
	); err != nil {
		return nil, err
	}
	return r.GetByID(dbc, orgID, id)
}

func (r *userRepo) SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error {
	return base.SoftDelete[types.User](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), userEntity)
}
