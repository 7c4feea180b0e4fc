package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos"
	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

type testEnv struct {
	db     *gorm.DB
	log    *logger.Logger
	bucket objectstore.BucketService

	orgs        repos.OrganisationRepo
	users       repos.UserRepo
	dataSources repos.DataSourceRepo
	projects    repos.ProjectRepo
	links       repos.ProjectDataSourceRepo
	datasets    repos.DatasetRepo
	jobs        repos.ProcessingJobRepo
	jobSources  repos.ProcessingJobDataSourceRepo
	schemas     repos.CanonicalSchemaRepo
	pipelines   repos.ProcessingPipelineRepo
	connectors  repos.ApiConnectorRepo

	org  *types.Organisation
	user *types.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	bucket, err := objectstore.NewLocalBucketService(log, t.TempDir())
	require.NoError(t, err)

	org := testutil.SeedOrganisation(t, db)
	user := testutil.SeedUser(t, db, org.ID, tenancy.RoleAdmin, "unused")

	return &testEnv{
		db:          db,
		log:         log,
		bucket:      bucket,
		orgs:        repos.NewOrganisationRepo(db, log),
		users:       repos.NewUserRepo(db, log),
		dataSources: repos.NewDataSourceRepo(db, log),
		projects:    repos.NewProjectRepo(db, log),
		links:       repos.NewProjectDataSourceRepo(db, log),
		datasets:    repos.NewDatasetRepo(db, log),
		jobs:        repos.NewProcessingJobRepo(db, log),
		jobSources:  repos.NewProcessingJobDataSourceRepo(db, log),
		schemas:     repos.NewCanonicalSchemaRepo(db, log),
		pipelines:   repos.NewProcessingPipelineRepo(db, log),
		connectors:  repos.NewApiConnectorRepo(db, log),
		org:         org,
		user:        user,
	}
}

func requireKind(t *testing.T, err error, kind apierr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apierr.Is(err, kind), "want %s error, got %v", kind, err)
	if msg != "" {
		require.Equal(t, msg, apierr.Message(err))
	}
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[tokenID] = until
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

type capturePublisher struct {
	mu       sync.Mutex
	messages []JobQueuedMessage
}

func (p *capturePublisher) Publish(_ context.Context, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg.(JobQueuedMessage))
	return nil
}

func (p *capturePublisher) last(t *testing.T) JobQueuedMessage {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.messages)
	return p.messages[len(p.messages)-1]
}

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}
