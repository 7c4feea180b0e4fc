package projects

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusConfiguring Status = "configuring"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusArchived    Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfiguring, StatusProcessing, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

type Project struct {
	core.Record
	OrganisationID                uuid.UUID      `gorm:"type:uuid;not null;index;column:organisation_id" json:"organisationId"`
	Name                          string         `gorm:"not null;column:name" json:"name"`
	Description                   string         `gorm:"column:description" json:"description"`
	Status                        Status         `gorm:"not null;index;column:status" json:"status"`
	CanonicalSchemaID             *uuid.UUID     `gorm:"type:uuid;column:canonical_schema_id" json:"canonicalSchemaId"`
	ProcessingPipelineID          *uuid.UUID     `gorm:"type:uuid;column:processing_pipeline_id" json:"processingPipelineId"`
	FieldMappingConfig            datatypes.JSON `gorm:"column:field_mapping_config" json:"fieldMappingConfig"`
	FieldMappingConfigVersion     *int           `gorm:"column:field_mapping_config_version" json:"fieldMappingConfigVersion"`
	DeIdentificationConfig        datatypes.JSON `gorm:"column:de_identification_config" json:"deIdentificationConfig"`
	DeIdentificationConfigVersion *int           `gorm:"column:de_identification_config_version" json:"deIdentificationConfigVersion"`
	CreatedByUserID               uuid.UUID      `gorm:"type:uuid;not null;column:created_by_user_id" json:"createdByUserId"`
}

func (Project) TableName() string { return "projects" }

func (p Project) FieldMapping() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(p.FieldMappingConfig, p.FieldMappingConfigVersion)
}

func (p Project) DeIdentification() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(p.DeIdentificationConfig, p.DeIdentificationConfigVersion)
}

// ConfigField names a versioned blob column pair on Project.
type ConfigField struct {
	Column        string
	VersionColumn string
}

var (
	FieldMappingField     = ConfigField{Column: "field_mapping_config", VersionColumn: "field_mapping_config_version"}
	DeIdentificationField = ConfigField{Column: "de_identification_config", VersionColumn: "de_identification_config_version"}
)

func (p Project) Blob(field ConfigField) core.VersionedBlob[datatypes.JSON] {
	if field == DeIdentificationField {
		return p.DeIdentification()
	}
	return p.FieldMapping()
}

type ProjectFilter struct {
	Status  *Status
	OrderBy string
}

type ProjectPatch struct {
	Name                 *string
	Description          *string
	Status               *Status
	CanonicalSchemaID    *uuid.UUID
	ProcessingPipelineID *uuid.UUID
}

func (p ProjectPatch) Columns() map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Status != nil {
		out["status"] = string(*p.Status)
	}
	if p.CanonicalSchemaID != nil {
		out["canonical_schema_id"] = *p.CanonicalSchemaID
	}
	if p.ProcessingPipelineID != nil {
		out["processing_pipeline_id"] = *p.ProcessingPipelineID
	}
	return out
}
