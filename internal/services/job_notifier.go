package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const JobQueuedEvent = "job.queued"

// JobPublisher delivers a message to the worker fleet.
type JobPublisher interface {
	Publish(ctx context.Context, msg any) error
}

type JobQueuedMessage struct {
	Event          string          `json:"event"`
	JobID          uuid.UUID       `json:"jobId"`
	ProjectID      uuid.UUID       `json:"projectId"`
	OrganisationID uuid.UUID       `json:"organisationId"`
	RetryOfJobID   *uuid.UUID      `json:"retryOfJobId,omitempty"`
	DataSourceIDs  []uuid.UUID     `json:"dataSourceIds"`
	ConfigSnapshot json.RawMessage `json:"configSnapshot"`
}

// JobNotifier is told about every job after its transaction commits.
type JobNotifier interface {
	JobQueued(ctx context.Context, orgID uuid.UUID, job *types.ProcessingJob, dataSourceIDs []uuid.UUID)
}

type jobNotifier struct {
	log       *logger.Logger
	publisher JobPublisher
	metrics   *observability.Metrics
}

// NewJobNotifier builds a notifier. publisher may be nil, in which case jobs
// are only counted and logged.
func NewJobNotifier(log *logger.Logger, publisher JobPublisher, metrics *observability.Metrics) JobNotifier {
	return &jobNotifier{log: log.With("service", "JobNotifier"), publisher: publisher, metrics: metrics}
}

func (n *jobNotifier) JobQueued(ctx context.Context, orgID uuid.UUID, job *types.ProcessingJob, dataSourceIDs []uuid.UUID) {
	n.metrics.IncJobQueued(string(job.TriggeredBy))
	if n.publisher == nil {
		n.log.Debug("Job queued (no publisher)", "job_id", job.ID)
		return
	}
	if dataSourceIDs == nil {
		dataSourceIDs = []uuid.UUID{}
	}
	msg := JobQueuedMessage{
		Event:          JobQueuedEvent,
		JobID:          job.ID,
		ProjectID:      job.ProjectID,
		OrganisationID: orgID,
		RetryOfJobID:   job.RetryOfJobID,
		DataSourceIDs:  dataSourceIDs,
		ConfigSnapshot: json.RawMessage(job.ConfigSnapshot),
	}
	// Best effort: the job is committed and stays queued either way.
	if err := n.publisher.Publish(ctx, msg); err != nil {
		n.log.Warn("Failed to publish queued job", "job_id", job.ID, "error", err)
	}
}
