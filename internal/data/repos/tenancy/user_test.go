package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	domaintenancy "github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := testutil.SeedOrganisation(t, db)
	other := testutil.SeedOrganisation(t, db)

	u := &types.User{
		OrganisationID: org.ID,
		Email:          "repo-user@example.com",
		PasswordHash:   "hash",
		Role:           domaintenancy.RoleMember,
	}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned")
	}

	got, err := repo.GetByID(dbc, org.ID, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != u.Email {
		t.Fatalf("GetByID: email=%q want %q", got.Email, u.Email)
	}

	if _, err := repo.GetByID(dbc, other.ID, u.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByID (other org): expected NotFound, got %v", err)
	}

	byEmail, err := repo.GetByEmail(dbc, u.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: unexpected user %s", byEmail.ID)
	}

	dup := &types.User{OrganisationID: other.ID, Email: u.Email, PasswordHash: "x", Role: domaintenancy.RoleAdmin}
	if err := repo.Create(dbc, dup); !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("Create (duplicate email): expected Conflict, got %v", err)
	}

	admin := domaintenancy.RoleAdmin
	updated, err := repo.Update(dbc, org.ID, u.ID, types.UserPatch{Role: &admin})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != domaintenancy.RoleAdmin {
		t.Fatalf("Update: role=%q", updated.Role)
	}

	if _, err := repo.Update(dbc, other.ID, u.ID, types.UserPatch{Role: &admin}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Update (other org): expected NotFound, got %v", err)
	}

	admins, err := repo.List(dbc, org.ID, UserFilter{Role: &admin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != u.ID {
		t.Fatalf("List: unexpected result: %+v", admins)
	}

	if err := repo.SoftDelete(dbc, org.ID, u.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.GetByID(dbc, org.ID, u.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByID (deleted): expected NotFound, got %v", err)
	}
	if err := repo.SoftDelete(dbc, org.ID, u.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("SoftDelete (second): expected NotFound, got %v", err)
	}
	if _, err := repo.Update(dbc, org.ID, u.ID, types.UserPatch{Role: &admin}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Update (deleted): expected NotFound, got %v", err)
	}

	// The email is free again once its owner is deleted.
	again := &types.User{OrganisationID: org.ID, Email: u.Email, PasswordHash: "x", Role: domaintenancy.RoleMember}
	if err := repo.Create(dbc, again); err != nil {
		t.Fatalf("Create (after delete): %v", err)
	}
}

func TestOrganisationRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOrganisationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := &types.Organisation{Name: "Acme"}
	if err := repo.Create(dbc, org); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(dbc, &types.Organisation{Name: "Acme"}); !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("Create (duplicate): expected Conflict, got %v", err)
	}

	renamed, err := repo.UpdateName(dbc, org.ID, "Acme Health")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if renamed.Name != "Acme Health" {
		t.Fatalf("UpdateName: name=%q", renamed.Name)
	}

	byName, err := repo.GetByName(dbc, "Acme Health")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != org.ID {
		t.Fatalf("GetByName: unexpected org %s", byName.ID)
	}

	if _, err := repo.GetByID(dbc, uuid.New()); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("GetByID (missing): expected NotFound, got %v", err)
	}
}
