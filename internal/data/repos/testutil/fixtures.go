package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/catalog"
	"github.com/yungbote/curator-backend/internal/domain/ingestion"
	"github.com/yungbote/curator-backend/internal/domain/jobs"
	"github.com/yungbote/curator-backend/internal/domain/projects"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
)

func create(tb testing.TB, db *gorm.DB, row any) {
	tb.Helper()
	if err := db.Create(row).Error; err != nil {
		tb.Fatalf("seed %T: %v", row, err)
	}
}

func SeedOrganisation(tb testing.TB, db *gorm.DB) *types.Organisation {
	tb.Helper()
	org := &types.Organisation{Name: "org-" + uuid.NewString()}
	create(tb, db, org)
	return org
}

// SeedUser stores a user whose password hash is passwordHash verbatim.
func SeedUser(tb testing.TB, db *gorm.DB, orgID uuid.UUID, role tenancy.Role, passwordHash string) *types.User {
	tb.Helper()
	u := &types.User{
		OrganisationID: orgID,
		Email:          "user-" + uuid.NewString() + "@example.com",
		PasswordHash:   passwordHash,
		Role:           role,
	}
	create(tb, db, u)
	return u
}

func SeedDataSource(tb testing.TB, db *gorm.DB, orgID, userID uuid.UUID) *types.DataSource {
	tb.Helper()
	ds := &types.DataSource{
		OrganisationID:  orgID,
		Name:            "source-" + uuid.NewString(),
		SourceType:      ingestion.SourceTypeFileUpload,
		Status:          ingestion.StatusUploaded,
		CreatedByUserID: userID,
	}
	create(tb, db, ds)
	return ds
}

func SeedProject(tb testing.TB, db *gorm.DB, orgID, userID uuid.UUID) *types.Project {
	tb.Helper()
	p := &types.Project{
		OrganisationID:  orgID,
		Name:            "project-" + uuid.NewString(),
		Status:          projects.StatusDraft,
		CreatedByUserID: userID,
	}
	create(tb, db, p)
	return p
}

func SeedCanonicalSchema(tb testing.TB, db *gorm.DB) *types.CanonicalSchema {
	tb.Helper()
	s := &types.CanonicalSchema{
		Name:             "schema-" + uuid.NewString(),
		Version:          "1.0.0",
		Category:         catalog.SchemaCategoryConversations,
		SchemaDefinition: datatypes.JSON(`{"type":"object"}`),
	}
	create(tb, db, s)
	return s
}

func SeedPipeline(tb testing.TB, db *gorm.DB) *types.ProcessingPipeline {
	tb.Helper()
	p := &types.ProcessingPipeline{
		Name:             "pipeline-" + uuid.NewString(),
		Version:          "1.0.0",
		StageDefinitions: datatypes.JSON(`[{"stage":"normalize"}]`),
	}
	create(tb, db, p)
	return p
}

func SeedConnector(tb testing.TB, db *gorm.DB, active bool) *types.ApiConnector {
	tb.Helper()
	c := &types.ApiConnector{
		Name:           "connector-" + uuid.NewString(),
		Provider:       "zendesk",
		AuthMethod:     catalog.AuthMethodAPIKey,
		ConfigTemplate: datatypes.JSON(`{"subdomain":""}`),
		IsActive:       active,
	}
	create(tb, db, c)
	return c
}

func SeedJob(tb testing.TB, db *gorm.DB, projectID, userID uuid.UUID, status jobs.Status) *types.ProcessingJob {
	tb.Helper()
	j := &types.ProcessingJob{
		ProjectID:       projectID,
		Status:          status,
		ConfigSnapshot:  datatypes.JSON(`{"projectId":"` + projectID.String() + `"}`),
		TriggeredBy:     jobs.TriggerUser,
		CreatedByUserID: userID,
	}
	create(tb, db, j)
	return j
}
