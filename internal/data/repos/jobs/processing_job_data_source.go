package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const processingJobDataSourceEntity = "Processing job data source"

type ProcessingJobDataSourceRepo interface {
	CreateMany(dbc dbctx.Context, links []*types.ProcessingJobDataSource) error
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ProcessingJobDataSource, error)
}

type processingJobDataSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingJobDataSourceRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingJobDataSourceRepo {
	return &processingJobDataSourceRepo{db: db, log: baseLog.With("repo", "ProcessingJobDataSourceRepo")}
}

func (r *processingJobDataSourceRepo) CreateMany(dbc dbctx.Context, links []*types.ProcessingJobDataSource) error {
	return base.Create(base.Conn(dbc, r.db), processingJobDataSourceEntity, links...)
}

func (r *processingJobDataSourceRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ProcessingJobDataSource, error) {
	return base.Find[types.ProcessingJobDataSource](
		base.Conn(dbc, r.db).Where("processing_job_id = ?", jobID).Order("created_at ASC"),
	)
}
