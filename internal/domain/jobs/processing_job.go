package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

var statusTransitions = map[Status][]Status{
	StatusQueued:  {StatusRunning},
	StatusRunning: {StatusCompleted, StatusFailed},
}

func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Trigger string

const (
	TriggerUser      Trigger = "user"
	TriggerSystem    Trigger = "system"
	TriggerScheduler Trigger = "scheduler"
)

type ProcessingJob struct {
	core.Record
	ProjectID       uuid.UUID      `gorm:"type:uuid;not null;index;column:project_id" json:"projectId"`
	Status          Status         `gorm:"not null;index;column:status" json:"status"`
	ConfigSnapshot  datatypes.JSON `gorm:"not null;column:config_snapshot" json:"configSnapshot"`
	ErrorDetails    datatypes.JSON `gorm:"column:error_details" json:"errorDetails"`
	TriggeredBy     Trigger        `gorm:"not null;column:triggered_by" json:"triggeredBy"`
	CreatedByUserID uuid.UUID      `gorm:"type:uuid;not null;column:created_by_user_id" json:"createdByUserId"`
	RetryOfJobID    *uuid.UUID     `gorm:"type:uuid;index;column:retry_of_job_id" json:"retryOfJobId"`
	StartedAt       *time.Time     `gorm:"column:started_at" json:"startedAt"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completedAt"`
}

func (ProcessingJob) TableName() string { return "processing_jobs" }

// ProcessingJobDataSource records which data sources a job consumes. At most
// one active row exists per (job, data source) pair.
type ProcessingJobDataSource struct {
	core.Record
	ProcessingJobID uuid.UUID `gorm:"type:uuid;not null;index;column:processing_job_id" json:"processingJobId"`
	DataSourceID    uuid.UUID `gorm:"type:uuid;not null;index;column:data_source_id" json:"dataSourceId"`
}

func (ProcessingJobDataSource) TableName() string { return "processing_job_data_sources" }

type JobFilter struct {
	Status *Status
}

// ConfigSnapshot freezes the project configuration a job runs against. Later
// edits to the project never reach an existing job.
type ConfigSnapshot struct {
	ProjectID                     uuid.UUID       `json:"projectId"`
	CanonicalSchemaID             *uuid.UUID      `json:"canonicalSchemaId"`
	ProcessingPipelineID          *uuid.UUID      `json:"processingPipelineId"`
	FieldMappingConfig            json.RawMessage `json:"fieldMappingConfig"`
	FieldMappingConfigVersion     int             `json:"fieldMappingConfigVersion"`
	DeIdentificationConfig        json.RawMessage `json:"deIdentificationConfig"`
	DeIdentificationConfigVersion int             `json:"deIdentificationConfigVersion"`
}

func (s ConfigSnapshot) JSON() (datatypes.JSON, error) {
	if len(s.FieldMappingConfig) == 0 {
		s.FieldMappingConfig = json.RawMessage("null")
	}
	if len(s.DeIdentificationConfig) == 0 {
		s.DeIdentificationConfig = json.RawMessage("null")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
