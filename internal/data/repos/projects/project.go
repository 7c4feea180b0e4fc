package projects

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/core"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const projectEntity = "Project"

var projectOrderColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
}

// ProjectOrderClause turns an API orderBy value ("name", "-createdAt", ...) into
// an ORDER BY clause. Unknown fields are rejected.
func ProjectOrderClause(orderBy string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return "", nil
	}
	dir := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		dir = "DESC"
		orderBy = orderBy[1:]
	}
	col, ok := projectOrderColumns[orderBy]
	if !ok {
		return "", apierr.Validation("Invalid orderBy field: %s", orderBy)
	}
	return col + " " + dir, nil
}

type ProjectRepo interface {
	Create(dbc dbctx.Context, project *types.Project) error
	List(dbc dbctx.Context, orgID uuid.UUID, filter types.ProjectFilter) ([]*types.Project, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.Project, error)
	Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.ProjectPatch) (*types.Project, error)
	ReplaceConfig(dbc dbctx.Context, orgID, id uuid.UUID, field types.ConfigField, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error)
	SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, project *types.Project) error {
	return base.Create(base.Conn(dbc, r.db), projectEntity, project)
}

func (r *projectRepo) List(dbc dbctx.Context, orgID uuid.UUID, filter types.ProjectFilter) ([]*types.Project, error) {
	order, err := ProjectOrderClause(filter.OrderBy)
	if err != nil {
		return nil, err
	}
	q := base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID))
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if order != "" {
		q = q.Order(order)
	}
	return base.Find[types.Project](q)
}

func (r *projectRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.Project, error) {
	return base.First[types.Project](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), projectEntity)
}

func (r *projectRepo) Update(dbc dbctx.Context, orgID, id uuid.UUID, patch types.ProjectPatch) (*types.Project, error) {
	if err := base.Update[types.Project](
		base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)),
		projectEntity,
		patch.Columns(),
	); err != nil {
		return nil, err
	}
	return r.GetByID(dbc, orgID, id)
}

func (r *projectRepo) ReplaceConfig(dbc dbctx.Context, orgID, id uuid.UUID, field types.ConfigField, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
	return base.ReplaceVersioned[types.Project](
		base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)),
		field.Column, field.VersionColumn,
		expected, next,
	)
}

func (r *projectRepo) SoftDelete(dbc dbctx.Context, orgID, id uuid.UUID) error {
	return base.SoftDelete[types.Project](base.Conn(dbc, r.db).Scopes(base.ByOrg(orgID), base.ByID(id)), projectEntity)
}
