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

const processingPipelineEntity = "Processing pipeline"

type ProcessingPipelineRepo interface {
	Create(dbc dbctx.Context, pipeline *types.ProcessingPipeline) error
	List(dbc dbctx.Context) ([]*types.ProcessingPipeline, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProcessingPipeline, error)
	GetByKey(dbc dbctx.Context, name, version string) (*types.ProcessingPipeline, error)
	ReplaceStages(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error)
}

type processingPipelineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingPipelineRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingPipelineRepo {
	return &processingPipelineRepo{db: db, log: baseLog.With("repo", "ProcessingPipelineRepo")}
}

func (r *processingPipelineRepo) Create(dbc dbctx.Context, pipeline *types.ProcessingPipeline) error {
	return base.Create(base.Conn(dbc, r.db), processingPipelineEntity, pipeline)
}

func (r *processingPipelineRepo) List(dbc dbctx.Context) ([]*types.ProcessingPipeline, error) {
	return base.Find[types.ProcessingPipeline](base.Conn(dbc, r.db).Order("name ASC, version ASC"))
}

func (r *processingPipelineRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProcessingPipeline, error) {
	return base.First[types.ProcessingPipeline](base.Conn(dbc, r.db).Scopes(base.ByID(id)), processingPipelineEntity)
}

func (r *processingPipelineRepo) GetByKey(dbc dbctx.Context, name, version string) (*types.ProcessingPipeline, error) {
	return base.First[types.ProcessingPipeline](
		base.Conn(dbc, r.db).Where("name = ? AND version = ?", name, version),
		processingPipelineEntity,
	)
}

func (r *processingPipelineRepo) ReplaceStages(dbc dbctx.Context, id uuid.UUID, expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
	return base.ReplaceVersioned[types.ProcessingPipeline](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)),
		"stage_definitions", "stage_definitions_version",
		expected, next,
	)
}
