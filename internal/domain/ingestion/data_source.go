package ingestion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

type SourceType string

const (
	SourceTypeFileUpload    SourceType = "fileUpload"
	SourceTypeAPIConnection SourceType = "apiConnection"
)

func (t SourceType) Valid() bool {
	return t == SourceTypeFileUpload || t == SourceTypeAPIConnection
}

type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusValidating Status = "validating"
	StatusReady      Status = "ready"
	StatusExpired    Status = "expired"
	StatusError      Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusValidating, StatusReady, StatusExpired, StatusError:
		return true
	}
	return false
}

var statusTransitions = map[Status][]Status{
	StatusUploaded:   {StatusValidating, StatusError},
	StatusValidating: {StatusReady, StatusError},
	StatusReady:      {StatusExpired},
}

// CanTransition reports whether a data source may move from one status to
// another. Staying put is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type DataSource struct {
	core.Record
	OrganisationID          uuid.UUID      `gorm:"type:uuid;not null;index;column:organisation_id" json:"organisationId"`
	Name                    string         `gorm:"not null;column:name" json:"name"`
	SourceType              SourceType     `gorm:"not null;index;column:source_type" json:"sourceType"`
	Status                  Status         `gorm:"not null;index;column:status" json:"status"`
	FilePath                string         `gorm:"column:file_path" json:"filePath,omitempty"`
	OriginalFileName        string         `gorm:"column:original_file_name" json:"originalFileName,omitempty"`
	MimeType                string         `gorm:"column:mime_type" json:"mimeType,omitempty"`
	SizeBytes               int64          `gorm:"column:size_bytes" json:"sizeBytes"`
	APIConnectorID          *uuid.UUID     `gorm:"type:uuid;index;column:api_connector_id" json:"apiConnectorId"`
	ConnectionConfig        datatypes.JSON `gorm:"column:connection_config" json:"connectionConfig"`
	ConnectionConfigVersion *int           `gorm:"column:connection_config_version" json:"connectionConfigVersion"`
	DetectedColumns         datatypes.JSON `gorm:"column:detected_columns" json:"detectedColumns"`
	ExpiresAt               *time.Time     `gorm:"column:expires_at" json:"expiresAt"`
	CreatedByUserID         uuid.UUID      `gorm:"type:uuid;not null;column:created_by_user_id" json:"createdByUserId"`
}

func (DataSource) TableName() string { return "data_sources" }

func (d DataSource) Connection() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(d.ConnectionConfig, d.ConnectionConfigVersion)
}

type DataSourceFilter struct {
	Status     *Status
	SourceType *SourceType
}

type DataSourcePatch struct {
	Name   *string
	Status *Status
}

func (p DataSourcePatch) Columns() map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Status != nil {
		out["status"] = string(*p.Status)
	}
	return out
}
