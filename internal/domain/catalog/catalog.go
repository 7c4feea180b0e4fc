package catalog

import (
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

// Catalog entities are global: they carry no organisation and every tenant
// reads the same rows.

type SchemaCategory string

const (
	SchemaCategoryConversations      SchemaCategory = "conversations"
	SchemaCategoryKnowledgeDocuments SchemaCategory = "knowledgeDocuments"
	SchemaCategoryDecisionRecords    SchemaCategory = "decisionRecords"
)

func (c SchemaCategory) Valid() bool {
	switch c {
	case SchemaCategoryConversations, SchemaCategoryKnowledgeDocuments, SchemaCategoryDecisionRecords:
		return true
	}
	return false
}

type CanonicalSchema struct {
	core.Record
	Name                    string         `gorm:"not null;column:name" json:"name"`
	Version                 string         `gorm:"not null;column:version" json:"version"`
	Category                SchemaCategory `gorm:"not null;index;column:category" json:"category"`
	Description             string         `gorm:"column:description" json:"description,omitempty"`
	SchemaDefinition        datatypes.JSON `gorm:"column:schema_definition" json:"schemaDefinition"`
	SchemaDefinitionVersion *int           `gorm:"column:schema_definition_version" json:"schemaDefinitionVersion"`
	IsDefault               bool           `gorm:"not null;column:is_default" json:"isDefault"`
}

func (CanonicalSchema) TableName() string { return "canonical_schemas" }

func (s CanonicalSchema) Definition() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(s.SchemaDefinition, s.SchemaDefinitionVersion)
}

type ProcessingPipeline struct {
	core.Record
	Name                    string         `gorm:"not null;column:name" json:"name"`
	Version                 string         `gorm:"not null;column:version" json:"version"`
	Description             string         `gorm:"column:description" json:"description,omitempty"`
	StageDefinitions        datatypes.JSON `gorm:"column:stage_definitions" json:"stageDefinitions"`
	StageDefinitionsVersion *int           `gorm:"column:stage_definitions_version" json:"stageDefinitionsVersion"`
	IsDefault               bool           `gorm:"not null;column:is_default" json:"isDefault"`
}

func (ProcessingPipeline) TableName() string { return "processing_pipelines" }

func (p ProcessingPipeline) Stages() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(p.StageDefinitions, p.StageDefinitionsVersion)
}

type AuthMethod string

const (
	AuthMethodOAuth2 AuthMethod = "oauth2"
	AuthMethodAPIKey AuthMethod = "apiKey"
	AuthMethodBasic  AuthMethod = "basic"
)

func (m AuthMethod) Valid() bool {
	return m == AuthMethodOAuth2 || m == AuthMethodAPIKey || m == AuthMethodBasic
}

type ApiConnector struct {
	core.Record
	Name                  string         `gorm:"not null;column:name" json:"name"`
	Provider              string         `gorm:"not null;column:provider" json:"provider"`
	AuthMethod            AuthMethod     `gorm:"not null;column:auth_method" json:"authMethod"`
	BaseURL               string         `gorm:"column:base_url" json:"baseUrl,omitempty"`
	ConfigTemplate        datatypes.JSON `gorm:"column:config_template" json:"configTemplate"`
	ConfigTemplateVersion *int           `gorm:"column:config_template_version" json:"configTemplateVersion"`
	IsActive              bool           `gorm:"not null;column:is_active" json:"isActive"`
}

func (ApiConnector) TableName() string { return "api_connectors" }

func (c ApiConnector) Template() core.VersionedBlob[datatypes.JSON] {
	return core.BlobOf(c.ConfigTemplate, c.ConfigTemplateVersion)
}
