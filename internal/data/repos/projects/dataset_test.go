package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/jobs"
	domainprojects "github.com/yungbote/curator-backend/internal/domain/projects"
	domaintenancy "github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

func TestDatasetRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDatasetRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := testutil.SeedOrganisation(t, db)
	user := testutil.SeedUser(t, db, org.ID, domaintenancy.RoleAdmin, "hash")
	project := testutil.SeedProject(t, db, org.ID, user.ID)
	job := testutil.SeedJob(t, db, project.ID, user.ID, jobs.StatusCompleted)
	schema := testutil.SeedCanonicalSchema(t, db)

	newDataset := func(version int) *types.Dataset {
		return &types.Dataset{
			ProjectID:         project.ID,
			ProcessingJobID:   job.ID,
			CanonicalSchemaID: schema.ID,
			Name:              "support-tickets",
			Version:           version,
			Format:            domainprojects.FormatConversationalJSONL,
			FilePath:          "datasets/" + uuid.NewString() + ".jsonl",
			RetentionPolicy:   domainprojects.RetentionUntilDeleted,
		}
	}

	latest, err := repo.MaxVersion(dbc, project.ID, "support-tickets")
	if err != nil {
		t.Fatalf("MaxVersion (empty): %v", err)
	}
	if latest != 0 {
		t.Fatalf("MaxVersion (empty): got %d", latest)
	}

	v1, v2 := newDataset(1), newDataset(2)
	if err := repo.Create(dbc, v1); err != nil {
		t.Fatalf("Create v1: %v", err)
	}
	if err := repo.Create(dbc, v2); err != nil {
		t.Fatalf("Create v2: %v", err)
	}
	if err := repo.Create(dbc, newDataset(2)); !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("Create (duplicate version): expected Conflict, got %v", err)
	}

	latest, err = repo.MaxVersion(dbc, project.ID, "support-tickets")
	if err != nil {
		t.Fatalf("MaxVersion: %v", err)
	}
	if latest != 2 {
		t.Fatalf("MaxVersion: got %d want 2", latest)
	}

	if err := repo.SoftDelete(dbc, project.ID, v2.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	latest, err = repo.MaxVersion(dbc, project.ID, "support-tickets")
	if err != nil {
		t.Fatalf("MaxVersion (after delete): %v", err)
	}
	if latest != 1 {
		t.Fatalf("MaxVersion (after delete): got %d want 1", latest)
	}

	listed, err := repo.ListByProject(dbc, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != v1.ID {
		t.Fatalf("ListByProject: unexpected result %+v", listed)
	}

	if _, err := repo.GetByID(dbc, uuid.New(), v1.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByID (wrong project): expected NotFound, got %v", err)
	}
}
