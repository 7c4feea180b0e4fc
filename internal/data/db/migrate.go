package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/curator-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

type activeUniqueIndex struct {
	name    string
	table   string
	columns string
}

// Uniqueness only binds active rows: a soft-deleted row never blocks a new one
// with the same key. Partial indexes enforce this on both Postgres and SQLite.
var activeUniqueIndexes = []activeUniqueIndex{
	{name: "idx_organisations_name_active", table: "organisations", columns: "name"},
	{name: "idx_users_email_active", table: "users", columns: "email"},
	{name: "idx_project_data_sources_pair_active", table: "project_data_sources", columns: "project_id, data_source_id"},
	{name: "idx_processing_job_data_sources_pair_active", table: "processing_job_data_sources", columns: "processing_job_id, data_source_id"},
	{name: "idx_datasets_project_name_version_active", table: "datasets", columns: "project_id, name, version"},
	{name: "idx_canonical_schemas_name_version_active", table: "canonical_schemas", columns: "name, version"},
	{name: "idx_processing_pipelines_name_version_active", table: "processing_pipelines", columns: "name, version"},
	{name: "idx_api_connectors_name_active", table: "api_connectors", columns: "name"},
}

func EnsureActiveUniqueIndexes(db *gorm.DB) error {
	for _, idx := range activeUniqueIndexes {
		stmt := fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s(%s) WHERE deleted_at IS NULL`,
			idx.name, idx.table, idx.columns,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", idx.name, err)
		}
	}
	return nil
}
