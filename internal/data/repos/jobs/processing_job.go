package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos/base"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const processingJobEntity = "Processing job"

// StatusChange moves a job from one status to the next. Timestamps and error
// details are written only when set.
type StatusChange struct {
	From         types.JobStatus
	To           types.JobStatus
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorDetails datatypes.JSON
}

type ProcessingJobRepo interface {
	Create(dbc dbctx.Context, job *types.ProcessingJob) error
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, filter types.JobFilter) ([]*types.ProcessingJob, error)
	GetByID(dbc dbctx.Context, projectID, id uuid.UUID) (*types.ProcessingJob, error)
	// UpdateStatus applies change only while the job still has change.From. It
	// reports false when the job moved on in the meantime.
	UpdateStatus(dbc dbctx.Context, projectID, id uuid.UUID, change StatusChange) (bool, error)
}

type processingJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingJobRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingJobRepo {
	return &processingJobRepo{db: db, log: baseLog.With("repo", "ProcessingJobRepo")}
}

func (r *processingJobRepo) Create(dbc dbctx.Context, job *types.ProcessingJob) error {
	return base.Create(base.Conn(dbc, r.db), processingJobEntity, job)
}

func (r *processingJobRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, filter types.JobFilter) ([]*types.ProcessingJob, error) {
	q := base.Conn(dbc, r.db).Where("project_id = ?", projectID)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	return base.Find[types.ProcessingJob](q.Order("created_at DESC"))
}

func (r *processingJobRepo) GetByID(dbc dbctx.Context, projectID, id uuid.UUID) (*types.ProcessingJob, error) {
	return base.First[types.ProcessingJob](
		base.Conn(dbc, r.db).Scopes(base.ByID(id)).Where("project_id = ?", projectID),
		processingJobEntity,
	)
}

func (r *processingJobRepo) UpdateStatus(dbc dbctx.Context, projectID, id uuid.UUID, change StatusChange) (bool, error) {
	columns := map[string]any{
		"status":     string(change.To),
		"updated_at": time.Now().UTC(),
	}
	if change.StartedAt != nil {
		columns["started_at"] = *change.StartedAt
	}
	if change.CompletedAt != nil {
		columns["completed_at"] = *change.CompletedAt
	}
	if len(change.ErrorDetails) > 0 {
		columns["error_details"] = change.ErrorDetails
	}
	res := base.Conn(dbc, r.db).
		Model(&types.ProcessingJob{}).
		Scopes(base.ByID(id)).
		Where("project_id = ? AND status = ?", projectID, string(change.From)).
		Updates(columns)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
