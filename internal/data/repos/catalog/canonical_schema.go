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

const canonicalSchemaEntity = "Canonical schema"

type CanonicalSchemaRepo interface {
	Create(dbc dbctx.Context, schema *types.CanonicalSchema) error
	List(dbc dbctx.Context, category *types.SchemaCategory) ([]*types.CanonicalSchema, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalSchema, error)
	GetByKey(dbc dbctx.Context, name, version string) (*types.CanonicalSchema, error)
	ReplaceDefinition(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error)
}

type canonicalSchemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCanonicalSchemaRepo(db *gorm.DB, baseLog *logger.Logger) CanonicalSchemaRepo {
	return &canonicalSchemaRepo{db: db, log: baseLog.With("repo", "CanonicalSchemaRepo")}
}

func (r *canonicalSchemaRepo) Create(dbc dbctx.Context, schema *types.CanonicalSchema) error {
	return base.Create(base.Conn(dbc, r.db), canonicalSchemaEntity, schema)
}

func (r *canonicalSchemaRepo) List(dbc dbctx.Context, category *types.SchemaCategory) ([]*types.CanonicalSchema, error) {
	q := base.Conn(dbc, r.db)
	if category != nil {
		q = q.Where("category = ?", string(*category))
	}
	return base.Find[types.CanonicalSchema](q.Order("name ASC, version ASC"))
}

func (r *canonicalSchemaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalSchema, error) {
	return base.First[types.CanonicalSchema](base.Conn(dbc, r.db).Scopes(base.ByID(id)), canonicalSchemaEntity)
}

func (r *canonicalSchemaRepo) GetByKey(dbc dbctx.Context, name, version string) (*types.CanonicalSchema, error) {
	return base.First[types.CanonicalSchema](
		base.Conn(dbc, r.db).Where("name = ? AND version = ?", name, version),
		canonicalSchemaEntity,
	)
}

func (r *canonicalSchemaRepo) ReplaceDefinition(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
	return base.ReplaceVersioned[types.CanonicalSchema](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)),
		"schema_definition", "schema_definition_version",
		expected, next,
	)
}
