package services

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	"github.com/yungbote/curator-backend/internal/domain/ingestion"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/crypto"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newDataSources(t *testing.T, env *testEnv, cipher *crypto.Cipher, maxBytes int64) DataSourceService {
	t.Helper()
	return NewDataSourceService(env.log, env.dataSources, env.connectors, env.bucket, cipher, nil, maxBytes)
}

func csvUpload(name, body string) *UploadFile {
	return &UploadFile{FileName: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

func TestDataSourceUploadStoresFileAndColumns(t *testing.T) {
	env := newTestEnv(t)
	svc := newDataSources(t, env, nil, 0)
	body := "id,name\n1,ada\n"

	ds, err := svc.Create(context.Background(), env.org.ID, env.user.ID, CreateDataSourceInput{
		Name:       " tickets ",
		SourceType: ingestion.SourceTypeFileUpload,
		File:       csvUpload("export.CSV", body),
	})
	require.NoError(t, err)
	require.Equal(t, "tickets", ds.Name)
	require.Equal(t, ingestion.StatusUploaded, ds.Status)
	require.Equal(t, "export.CSV", ds.OriginalFileName)
	require.Equal(t, "text/csv", ds.MimeType)
	require.Equal(t, int64(len(body)), ds.SizeBytes)
	require.True(t, strings.HasPrefix(ds.FilePath, "organisations/"+env.org.ID.String()+"/data-sources/"))
	require.True(t, strings.HasSuffix(ds.FilePath, ".csv"))

	var cols []string
	require.NoError(t, json.Unmarshal(ds.DetectedColumns, &cols))
	require.Equal(t, []string{"id", "name"}, cols)

	rc, err := env.bucket.DownloadFile(context.Background(), objectstore.BucketCategoryUpload, ds.FilePath)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, body, string(stored))
}

func TestDataSourceUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := newDataSources(t, env, nil, 16)
	ctx := context.Background()

	_, err := svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{
		Name: "x", SourceType: ingestion.SourceTypeFileUpload, File: csvUpload("notes.txt", "a"),
	})
	requireKind(t, err, apierr.KindValidation, "Unsupported file type. Allowed types: csv, json, xlsx")

	_, err = svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{
		Name: "x", SourceType: ingestion.SourceTypeFileUpload, File: csvUpload("big.csv", strings.Repeat("a", 17)),
	})
	requireKind(t, err, apierr.KindValidation, "")

	_, err = svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{Name: "x", SourceType: ingestion.SourceTypeFileUpload})
	requireKind(t, err, apierr.KindValidation, "File is required for file uploads")

	_, err = svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{Name: "x", SourceType: "ftp"})
	requireKind(t, err, apierr.KindValidation, "Invalid source type: ftp")

	_, err = svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{Name: "  ", SourceType: ingestion.SourceTypeAPIConnection})
	requireKind(t, err, apierr.KindValidation, "Name is required")
}

func TestDataSourceStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	svc := newDataSources(t, env, nil, 0)
	ds := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)
	ctx := context.Background()

	ready := ingestion.StatusReady
	_, err := svc.Update(ctx, env.org.ID, ds.ID, UpdateDataSourceInput{Status: &ready})
	requireKind(t, err, apierr.KindConflict, "Cannot change data source status from uploaded to ready")

	for _, next := range []ingestion.Status{ingestion.StatusValidating, ingestion.StatusReady, ingestion.StatusExpired} {
		got, err := svc.Update(ctx, env.org.ID, ds.ID, UpdateDataSourceInput{Status: &next})
		require.NoError(t, err)
		require.Equal(t, next, got.Status)
	}

	name := "renamed"
	got, err := svc.Update(ctx, env.org.ID, ds.ID, UpdateDataSourceInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
	require.Equal(t, ingestion.StatusExpired, got.Status)
}

func TestDataSourceApiConnectionIsEncryptedAtRest(t *testing.T) {
	env := newTestEnv(t)
	cipher, err := crypto.NewCipherFromHex(testKeyHex)
	require.NoError(t, err)
	svc := newDataSources(t, env, cipher, 0)
	ctx := context.Background()

	ds, err := svc.Create(ctx, env.org.ID, env.user.ID, CreateDataSourceInput{Name: "zendesk", SourceType: ingestion.SourceTypeAPIConnection})
	require.NoError(t, err)
	connector := testutil.SeedConnector(t, env.db, true)

	got, err := svc.CreateApiConnection(ctx, env.org.ID, ds.ID, connector.ID, json.RawMessage(`{"token":"s3cret"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"token":"s3cret"}`, string(got.ConnectionConfig))
	require.Equal(t, 1, *got.ConnectionConfigVersion)
	require.Equal(t, connector.ID, *got.APIConnectorID)

	raw, err := env.dataSources.GetByID(dbctx.Context{Ctx: ctx}, env.org.ID, ds.ID)
	require.NoError(t, err)
	require.NotContains(t, string(raw.ConnectionConfig), "s3cret")
	require.Contains(t, string(raw.ConnectionConfig), "encrypted")

	got, err = svc.CreateApiConnection(ctx, env.org.ID, ds.ID, connector.ID, json.RawMessage(`{"token":"rotated"}`))
	require.NoError(t, err)
	require.Equal(t, 2, *got.ConnectionConfigVersion)

	// Without the key the sealed config is withheld.
	plain := newDataSources(t, env, nil, 0)
	withheld, err := plain.Get(ctx, env.org.ID, ds.ID)
	require.NoError(t, err)
	require.Nil(t, withheld.ConnectionConfig)
}

func TestDataSourceApiConnectionRequiresActiveConnector(t *testing.T) {
	env := newTestEnv(t)
	svc := newDataSources(t, env, nil, 0)
	ds := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)
	inactive := testutil.SeedConnector(t, env.db, false)

	_, err := svc.CreateApiConnection(context.Background(), env.org.ID, ds.ID, inactive.ID, json.RawMessage(`{}`))
	requireKind(t, err, apierr.KindValidation, "API connector is not active")

	_, err = svc.CreateApiConnection(context.Background(), env.org.ID, ds.ID, inactive.ID, nil)
	requireKind(t, err, apierr.KindValidation, "connectionConfig must be a JSON value")
}

func TestDataSourcesAreOrganisationScoped(t *testing.T) {
	env := newTestEnv(t)
	svc := newDataSources(t, env, nil, 0)
	ds := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)
	other := testutil.SeedOrganisation(t, env.db)

	_, err := svc.Get(context.Background(), other.ID, ds.ID)
	requireKind(t, err, apierr.KindNotFound, "Data source not found")

	list, err := svc.List(context.Background(), other.ID, ingestion.DataSourceFilter{})
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, svc.Delete(context.Background(), env.org.ID, ds.ID))
	_, err = svc.Get(context.Background(), env.org.ID, ds.ID)
	requireKind(t, err, apierr.KindNotFound, "Data source not found")
}
