package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/jobs"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type UpdateJobStatusInput struct {
	Status       types.JobStatus `json:"status"`
	ErrorDetails json.RawMessage `json:"errorDetails"`
}

type ProcessingJobService interface {
	Create(ctx context.Context, orgID, projectID, userID uuid.UUID, dataSourceIDs []uuid.UUID) (*types.ProcessingJob, error)
	List(ctx context.Context, orgID, projectID uuid.UUID, filter types.JobFilter) ([]*types.ProcessingJob, error)
	Get(ctx context.Context, orgID, projectID, jobID uuid.UUID) (*types.ProcessingJob, error)
	ListDataSources(ctx context.Context, orgID, projectID, jobID uuid.UUID) ([]*types.ProcessingJobDataSource, error)
	Retry(ctx context.Context, orgID, projectID, jobID uuid.UUID) (*types.ProcessingJob, error)
	UpdateStatus(ctx context.Context, orgID, projectID, jobID uuid.UUID, in UpdateJobStatusInput) (*types.ProcessingJob, error)
}

type processingJobService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	dsRepo      repos.DataSourceRepo
	jobRepo     repos.ProcessingJobRepo
	jobDSRepo   repos.ProcessingJobDataSourceRepo
	notifier    JobNotifier
	now         func() time.Time
}

func NewProcessingJobService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	dsRepo repos.DataSourceRepo,
	jobRepo repos.ProcessingJobRepo,
	jobDSRepo repos.ProcessingJobDataSourceRepo,
	notifier JobNotifier,
) ProcessingJobService {
	if notifier == nil {
		notifier = NewJobNotifier(log, nil, nil)
	}
	return &processingJobService{
		db:          db,
		log:         log.With("service", "ProcessingJobService"),
		projectRepo: projectRepo,
		dsRepo:      dsRepo,
		jobRepo:     jobRepo,
		jobDSRepo:   jobDSRepo,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *processingJobService) Create(ctx context.Context, orgID, projectID, userID uuid.UUID, dataSourceIDs []uuid.UUID) (*types.ProcessingJob, error) {
	seen := make(map[uuid.UUID]bool, len(dataSourceIDs))
	for _, id := range dataSourceIDs {
		if seen[id] {
			return nil, apierr.Validation("Duplicate data source id: %s", id)
		}
		seen[id] = true
	}

	var job *types.ProcessingJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		project, err := s.projectRepo.GetByID(dbc, orgID, projectID)
		if err != nil {
			return err
		}
		sources, err := s.dsRepo.GetManyByIDs(dbc, orgID, dataSourceIDs)
		if err != nil {
			return fmt.Errorf("load data sources: %w", err)
		}
		if len(sources) != len(dataSourceIDs) {
			return apierr.NotFound("Data source")
		}

		snapshot, err := snapshotOf(project)
		if err != nil {
			return err
		}
		job = &types.ProcessingJob{
			ProjectID:       projectID,
			Status:          jobs.StatusQueued,
			ConfigSnapshot:  snapshot,
			TriggeredBy:     jobs.TriggerUser,
			CreatedByUserID: userID,
		}
		if err := s.jobRepo.Create(dbc, job); err != nil {
			return err
		}
		return s.jobDSRepo.CreateMany(dbc, jobLinks(job.ID, dataSourceIDs))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Processing job queued", "job_id", job.ID, "project_id", projectID, "data_sources", len(dataSourceIDs))
	s.notifier.JobQueued(ctx, orgID, job, dataSourceIDs)
	return job, nil
}

func snapshotOf(p *types.Project) (datatypes.JSON, error) {
	fm, di := p.FieldMapping(), p.DeIdentification()
	raw, err := types.ConfigSnapshot{
		ProjectID:                     p.ID,
		CanonicalSchemaID:             p.CanonicalSchemaID,
		ProcessingPipelineID:          p.ProcessingPipelineID,
		FieldMappingConfig:            json.RawMessage(fm.Value),
		FieldMappingConfigVersion:     fm.Version,
		DeIdentificationConfig:        json.RawMessage(di.Value),
		DeIdentificationConfigVersion: di.Version,
	}.JSON()
	if err != nil {
		return nil, fmt.Errorf("snapshot project config: %w", err)
	}
	return raw, nil
}

func jobLinks(jobID uuid.UUID, dataSourceIDs []uuid.UUID) []*types.ProcessingJobDataSource {
	links := make([]*types.ProcessingJobDataSource, 0, len(dataSourceIDs))
	for _, id := range dataSourceIDs {
		links = append(links, &types.ProcessingJobDataSource{ProcessingJobID: jobID, DataSourceID: id})
	}
	return links
}

func (s *processingJobService) List(ctx context.Context, orgID, projectID uuid.UUID, filter types.JobFilter) ([]*types.ProcessingJob, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apierr.Validation("Invalid status: %s", *filter.Status)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	return s.jobRepo.ListByProject(dbc, projectID, filter)
}

func (s *processingJobService) Get(ctx context.Context, orgID, projectID, jobID uuid.UUID) (*types.ProcessingJob, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	return s.jobRepo.GetByID(dbc, projectID, jobID)
}

func (s *processingJobService) ListDataSources(ctx context.Context, orgID, projectID, jobID uuid.UUID) ([]*types.ProcessingJobDataSource, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.Get(ctx, orgID, projectID, jobID); err != nil {
		return nil, err
	}
	return s.jobDSRepo.ListByJob(dbc, jobID)
}

// Retry queues a copy of a job with the original snapshot and data sources.
// The original row is left untouched.
func (s *processingJobService) Retry(ctx context.Context, orgID, projectID, jobID uuid.UUID) (*types.ProcessingJob, error) {
	var (
		retry   *types.ProcessingJob
		sources []uuid.UUID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
			return err
		}
		original, err := s.jobRepo.GetByID(dbc, projectID, jobID)
		if err != nil {
			return err
		}
		links, err := s.jobDSRepo.ListByJob(dbc, original.ID)
		if err != nil {
			return fmt.Errorf("load job data sources: %w", err)
		}
		for _, l := range links {
			sources = append(sources, l.DataSourceID)
		}

		originalID := original.ID
		retry = &types.ProcessingJob{
			ProjectID:       projectID,
			Status:          jobs.StatusQueued,
			ConfigSnapshot:  original.ConfigSnapshot,
			TriggeredBy:     jobs.TriggerUser,
			CreatedByUserID: original.CreatedByUserID,
			RetryOfJobID:    &originalID,
		}
		if err := s.jobRepo.Create(dbc, retry); err != nil {
			return err
		}
		return s.jobDSRepo.CreateMany(dbc, jobLinks(retry.ID, sources))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Processing job retried", "job_id", retry.ID, "retry_of", jobID, "project_id", projectID)
	s.notifier.JobQueued(ctx, orgID, retry, sources)
	return retry, nil
}

func (s *processingJobService) UpdateStatus(ctx context.Context, orgID, projectID, jobID uuid.UUID, in UpdateJobStatusInput) (*types.ProcessingJob, error) {
	if !in.Status.Valid() {
		return nil, apierr.Validation("Invalid status: %s", in.Status)
	}
	dbc := dbctx.Context{Ctx: ctx}
	job, err := s.Get(ctx, orgID, projectID, jobID)
	if err != nil {
		return nil, err
	}
	if !jobs.CanTransition(job.Status, in.Status) {
		return nil, apierr.Conflict("Cannot change job status from %s to %s", job.Status, in.Status)
	}

	change := repos.JobStatusChange{From: job.Status, To: in.Status}
	now := s.now()
	switch in.Status {
	case jobs.StatusRunning:
		change.StartedAt = &now
	case jobs.StatusCompleted:
		change.CompletedAt = &now
	case jobs.StatusFailed:
		change.CompletedAt = &now
		if details, ok := jsonBlob(in.ErrorDetails); ok {
			change.ErrorDetails = details
		}
	}

	ok, err := s.jobRepo.UpdateStatus(dbc, projectID, jobID, change)
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	if !ok {
		return nil, apierr.Conflict("Job status changed concurrently")
	}
	s.log.Info("Processing job status changed", "job_id", jobID, "from", job.Status, "to", in.Status)
	return s.jobRepo.GetByID(dbc, projectID, jobID)
}
