package projects

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

type DatasetFormat string

const (
	FormatConversationalJSONL DatasetFormat = "conversationalJsonl"
	FormatStructuredJSON      DatasetFormat = "structuredJson"
	FormatQAPairsJSON         DatasetFormat = "qaPairsJson"
)

func (f DatasetFormat) Valid() bool {
	switch f {
	case FormatConversationalJSONL, FormatStructuredJSON, FormatQAPairsJSON:
		return true
	}
	return false
}

// Extension is the download file extension for the format.
func (f DatasetFormat) Extension() string {
	if f == FormatConversationalJSONL {
		return "jsonl"
	}
	return "json"
}

type RetentionPolicy string

const (
	RetentionUntilDeleted     RetentionPolicy = "untilDeleted"
	RetentionTimebound        RetentionPolicy = "timebound"
	RetentionProjectLifecycle RetentionPolicy = "projectLifecycle"
)

func (r RetentionPolicy) Valid() bool {
	switch r {
	case RetentionUntilDeleted, RetentionTimebound, RetentionProjectLifecycle:
		return true
	}
	return false
}

// Dataset is a processed, exportable output of a job. (project, name, version)
// is unique among active datasets.
type Dataset struct {
	core.Record
	ProjectID         uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id" json:"projectId"`
	ProcessingJobID   uuid.UUID       `gorm:"type:uuid;not null;index;column:processing_job_id" json:"processingJobId"`
	CanonicalSchemaID uuid.UUID       `gorm:"type:uuid;not null;column:canonical_schema_id" json:"canonicalSchemaId"`
	Name              string          `gorm:"not null;column:name" json:"name"`
	Version           int             `gorm:"not null;column:version" json:"version"`
	Format            DatasetFormat   `gorm:"not null;column:format" json:"format"`
	FilePath          string          `gorm:"not null;column:file_path" json:"filePath"`
	RecordCount       int64           `gorm:"not null;column:record_count" json:"recordCount"`
	SizeBytes         int64           `gorm:"not null;column:size_bytes" json:"sizeBytes"`
	Lineage           datatypes.JSON  `gorm:"column:lineage" json:"lineage"`
	RetentionPolicy   RetentionPolicy `gorm:"not null;column:retention_policy" json:"retentionPolicy"`
}

func (Dataset) TableName() string { return "datasets" }
