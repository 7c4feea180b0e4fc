package projects

import (
	"context"
	"testing"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	domaintenancy "github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

func TestProjectDataSourceRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProjectDataSourceRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := testutil.SeedOrganisation(t, db)
	user := testutil.SeedUser(t, db, org.ID, domaintenancy.RoleMember, "hash")
	project := testutil.SeedProject(t, db, org.ID, user.ID)
	otherProject := testutil.SeedProject(t, db, org.ID, user.ID)
	ds := testutil.SeedDataSource(t, db, org.ID, user.ID)

	link := &types.ProjectDataSource{ProjectID: project.ID, DataSourceID: ds.ID}
	if err := repo.Create(dbc, link); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(dbc, &types.ProjectDataSource{ProjectID: project.ID, DataSourceID: ds.ID}); !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("Create (duplicate): expected Conflict, got %v", err)
	}

	got, err := repo.GetByPair(dbc, project.ID, ds.ID)
	if err != nil {
		t.Fatalf("GetByPair: %v", err)
	}
	if got.ID != link.ID {
		t.Fatalf("GetByPair: unexpected link %s", got.ID)
	}

	if err := repo.SoftDelete(dbc, otherProject.ID, link.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("SoftDelete (wrong project): expected NotFound, got %v", err)
	}
	if err := repo.SoftDelete(dbc, project.ID, link.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.GetByPair(dbc, project.ID, ds.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByPair (deleted): expected NotFound, got %v", err)
	}

	// Removing a link frees the pair for a new one.
	if err := repo.Create(dbc, &types.ProjectDataSource{ProjectID: project.ID, DataSourceID: ds.ID}); err != nil {
		t.Fatalf("Create (re-add): %v", err)
	}
	links, err := repo.ListByProject(dbc, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(links) != 1 || links[0].ID == link.ID {
		t.Fatalf("ListByProject: expected only the new link, got %+v", links)
	}
}
