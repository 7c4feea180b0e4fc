package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	domainprojects "github.com/yungbote/curator-backend/internal/domain/projects"
	domaintenancy "github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

func TestProjectOrderClause(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"name":       "name ASC",
		"-createdAt": "created_at DESC",
		"updatedAt":  "updated_at ASC",
		"-status":    "status DESC",
	}
	for in, want := range cases {
		got, err := ProjectOrderClause(in)
		if err != nil {
			t.Fatalf("ProjectOrderClause(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ProjectOrderClause(%q)=%q want %q", in, got, want)
		}
	}
	for _, bad := range []string{"id; DROP TABLE projects", "organisationId", "-"} {
		if _, err := ProjectOrderClause(bad); !apierr.Is(err, apierr.KindValidation) {
			t.Fatalf("ProjectOrderClause(%q): expected ValidationError, got %v", bad, err)
		}
	}
}

func TestProjectRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProjectRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := testutil.SeedOrganisation(t, db)
	other := testutil.SeedOrganisation(t, db)
	user := testutil.SeedUser(t, db, org.ID, domaintenancy.RoleAdmin, "hash")

	for _, name := range []string{"Bravo", "Alpha", "Charlie"} {
		p := &types.Project{OrganisationID: org.ID, Name: name, Status: domainprojects.StatusDraft, CreatedByUserID: user.ID}
		if err := repo.Create(dbc, p); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	listed, err := repo.List(dbc, org.ID, types.ProjectFilter{OrderBy: "-name"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 3 || listed[0].Name != "Charlie" || listed[2].Name != "Alpha" {
		t.Fatalf("List: unexpected order: %v", names(listed))
	}

	none, err := repo.List(dbc, other.ID, types.ProjectFilter{})
	if err != nil {
		t.Fatalf("List (other org): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("List (other org): expected empty, got %d", len(none))
	}

	target := listed[0]
	if _, err := repo.GetByID(dbc, other.ID, target.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByID (other org): expected NotFound, got %v", err)
	}

	archived := domainprojects.StatusArchived
	updated, err := repo.Update(dbc, org.ID, target.ID, types.ProjectPatch{Status: &archived})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != archived || updated.Name != target.Name {
		t.Fatalf("Update: unexpected row %+v", updated)
	}

	filtered, err := repo.List(dbc, org.ID, types.ProjectFilter{Status: &archived})
	if err != nil {
		t.Fatalf("List (status): %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != target.ID {
		t.Fatalf("List (status): unexpected result %v", names(filtered))
	}

	// Versioned config writes are compare-and-set on the version column.
	blob := target.FieldMapping()
	if blob.Version != 0 {
		t.Fatalf("FieldMapping: fresh project has version %d", blob.Version)
	}
	next := blob.Replace(datatypes.JSON(`{"a":"b"}`))
	ok, err := repo.ReplaceConfig(dbc, org.ID, target.ID, domainprojects.FieldMappingField, blob.Version, next)
	if err != nil || !ok {
		t.Fatalf("ReplaceConfig: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ReplaceConfig(dbc, org.ID, target.ID, domainprojects.FieldMappingField, blob.Version, next)
	if err != nil {
		t.Fatalf("ReplaceConfig (stale): %v", err)
	}
	if ok {
		t.Fatalf("ReplaceConfig (stale): expected the stale write to be rejected")
	}
	reloaded, err := repo.GetByID(dbc, org.ID, target.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got := reloaded.FieldMapping(); got.Version != 1 || !testutil.SameJSON(got.Value, []byte(`{"a":"b"}`)) {
		t.Fatalf("FieldMapping after replace: %+v", got)
	}
	if got := reloaded.DeIdentification(); got.Version != 0 {
		t.Fatalf("DeIdentification: untouched blob has version %d", got.Version)
	}

	if err := repo.SoftDelete(dbc, org.ID, target.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := repo.SoftDelete(dbc, org.ID, target.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("SoftDelete (second): expected NotFound, got %v", err)
	}
	ok, err = repo.ReplaceConfig(dbc, org.ID, target.ID, domainprojects.FieldMappingField, 1, next.Replace(datatypes.JSON(`{}`)))
	if err != nil || ok {
		t.Fatalf("ReplaceConfig (deleted): ok=%v err=%v", ok, err)
	}
	if _, err := repo.Update(dbc, org.ID, uuid.New(), types.ProjectPatch{Status: &archived}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Update (missing): expected NotFound, got %v", err)
	}
}

func names(ps []*types.Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
