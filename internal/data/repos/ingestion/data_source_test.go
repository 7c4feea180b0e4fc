package ingestion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	domainingestion "github.com/yungbote/curator-backend/internal/domain/ingestion"
	domaintenancy "github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

func TestDataSourceRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDataSourceRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	org := testutil.SeedOrganisation(t, db)
	other := testutil.SeedOrganisation(t, db)
	user := testutil.SeedUser(t, db, org.ID, domaintenancy.RoleMember, "hash")
	connector := testutil.SeedConnector(t, db, true)

	a := testutil.SeedDataSource(t, db, org.ID, user.ID)
	b := testutil.SeedDataSource(t, db, org.ID, user.ID)
	foreign := testutil.SeedDataSource(t, db, other.ID, user.ID)

	validating := domainingestion.StatusValidating
	if _, err := repo.Update(dbc, org.ID, b.ID, types.DataSourcePatch{Status: &validating}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	uploaded := domainingestion.StatusUploaded
	listed, err := repo.List(dbc, org.ID, types.DataSourceFilter{Status: &uploaded})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != a.ID {
		t.Fatalf("List: unexpected result %+v", listed)
	}

	many, err := repo.GetManyByIDs(dbc, org.ID, []uuid.UUID{a.ID, b.ID, foreign.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetManyByIDs: %v", err)
	}
	if len(many) != 2 {
		t.Fatalf("GetManyByIDs: expected the 2 sources of the org, got %d", len(many))
	}

	blob := a.Connection()
	next := blob.Replace(datatypes.JSON(`{"subdomain":"acme"}`))
	ok, err := repo.ReplaceConnection(dbc, org.ID, a.ID, connector.ID, blob.Version, next)
	if err != nil || !ok {
		t.Fatalf("ReplaceConnection: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ReplaceConnection(dbc, other.ID, a.ID, connector.ID, 1, next.Replace(datatypes.JSON(`{}`)))
	if err != nil || ok {
		t.Fatalf("ReplaceConnection (other org): ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(dbc, org.ID, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SourceType != domainingestion.SourceTypeAPIConnection {
		t.Fatalf("GetByID: sourceType=%q", got.SourceType)
	}
	if got.APIConnectorID == nil || *got.APIConnectorID != connector.ID {
		t.Fatalf("GetByID: apiConnectorId=%v", got.APIConnectorID)
	}
	if got.Connection().Version != 1 {
		t.Fatalf("GetByID: connectionConfigVersion=%d", got.Connection().Version)
	}

	if err := repo.SoftDelete(dbc, other.ID, a.ID); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("SoftDelete (other org): expected NotFound, got %v", err)
	}
	if err := repo.SoftDelete(dbc, org.ID, a.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	all, err := repo.List(dbc, org.ID, types.DataSourceFilter{})
	if err != nil {
		t.Fatalf("List (after delete): %v", err)
	}
	if len(all) != 1 || all[0].ID != b.ID {
		t.Fatalf("List (after delete): unexpected result %+v", all)
	}
}
