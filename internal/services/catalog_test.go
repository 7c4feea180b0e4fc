package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/domain/catalog"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

const seedYAML = `
organisations:
  - name: Acme
    users:
      - email: Admin@Acme.test
        password: change-me-now
canonicalSchemas:
  - name: conversations
    version: "1.0.0"
    category: conversations
    isDefault: true
    schemaDefinition:
      type: object
      required: [messages]
processingPipelines:
  - name: default
    version: "1.0.0"
    stageDefinitions:
      - stage: normalize
      - stage: deidentify
apiConnectors:
  - name: zendesk
    provider: zendesk
    authMethod: apiKey
    baseUrl: https://example.zendesk.com
    configTemplate:
      subdomain: ""
`

func newCatalog(env *testEnv) CatalogService {
	return NewCatalogService(env.log, env.orgs, env.users, env.schemas, env.pipelines, env.connectors)
}

func TestParseCatalogSeed(t *testing.T) {
	seed, err := ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Organisations, 1)
	require.Len(t, seed.Organisations[0].Users, 1)
	require.Equal(t, "conversations", seed.Schemas[0].Category)
	require.Len(t, seed.Pipelines, 1)
	require.Equal(t, "apiKey", seed.Connectors[0].AuthMethod)

	_, err = ParseCatalogSeed(strings.NewReader("bogus: 1\n"))
	require.Error(t, err)

	empty, err := ParseCatalogSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty.Schemas)
}

func TestCatalogSeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newCatalog(env)
	ctx := context.Background()

	seed, err := ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	report, err := svc.Seed(ctx, seed)
	require.NoError(t, err)
	require.Equal(t, SeedReport{Created: 5}, *report)

	report, err = svc.Seed(ctx, seed)
	require.NoError(t, err)
	require.Equal(t, SeedReport{Unchanged: 5}, *report)

	user, err := env.users.GetByEmail(dbctx.Context{Ctx: ctx}, "admin@acme.test")
	require.NoError(t, err)
	require.Equal(t, "admin", string(user.Role))

	schemas, err := svc.ListSchemas(ctx, nil)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	require.Equal(t, 1, *schemas[0].SchemaDefinitionVersion)
	require.JSONEq(t, `{"type":"object","required":["messages"]}`, string(schemas[0].SchemaDefinition))
}

func TestCatalogSeedReplacesChangedBlobs(t *testing.T) {
	env := newTestEnv(t)
	svc := newCatalog(env)
	ctx := context.Background()

	seed, err := ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	_, err = svc.Seed(ctx, seed)
	require.NoError(t, err)

	seed.Schemas[0].Definition = map[string]any{"type": "object"}
	seed.Connectors[0].Template = map[string]any{"subdomain": "acme"}
	report, err := svc.Seed(ctx, seed)
	require.NoError(t, err)
	require.Equal(t, 2, report.Updated)

	schema, err := env.schemas.GetByKey(dbctx.Context{Ctx: ctx}, "conversations", "1.0.0")
	require.NoError(t, err)
	require.Equal(t, 2, *schema.SchemaDefinitionVersion)

	connectors, err := svc.ListConnectors(ctx)
	require.NoError(t, err)
	require.Len(t, connectors, 1)
	require.True(t, connectors[0].IsActive)
	require.Equal(t, 2, *connectors[0].ConfigTemplateVersion)
	require.JSONEq(t, `{"subdomain":"acme"}`, string(connectors[0].ConfigTemplate))
}

func TestCatalogListSchemasByCategory(t *testing.T) {
	env := newTestEnv(t)
	svc := newCatalog(env)
	ctx := context.Background()
	seed, err := ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	_, err = svc.Seed(ctx, seed)
	require.NoError(t, err)

	docs := catalog.SchemaCategoryKnowledgeDocuments
	list, err := svc.ListSchemas(ctx, &docs)
	require.NoError(t, err)
	require.Empty(t, list)

	bogus := catalog.SchemaCategory("emails")
	_, err = svc.ListSchemas(ctx, &bogus)
	requireKind(t, err, apierr.KindValidation, "Invalid category: emails")

	pipelines, err := svc.ListPipelines(ctx)
	require.NoError(t, err)
	require.Len(t, pipelines, 1)
	got, err := svc.GetPipeline(ctx, pipelines[0].ID)
	require.NoError(t, err)
	require.JSONEq(t, `[{"stage":"normalize"},{"stage":"deidentify"}]`, string(got.StageDefinitions))
}
