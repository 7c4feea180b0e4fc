package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	"github.com/yungbote/curator-backend/internal/domain/jobs"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
)

func newJobs(env *testEnv, publisher JobPublisher) ProcessingJobService {
	return NewProcessingJobService(
		env.db, env.log,
		env.projects, env.dataSources, env.jobs, env.jobSources,
		NewJobNotifier(env.log, publisher, nil),
	)
}

func decodeSnapshot(t *testing.T, raw []byte) jobs.ConfigSnapshot {
	t.Helper()
	var snap jobs.ConfigSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	return snap
}

func TestJobCreateSnapshotsProjectConfig(t *testing.T) {
	env := newTestEnv(t)
	pub := &capturePublisher{}
	svc := newJobs(env, pub)
	projectsSvc := newProjects(env)
	ctx := context.Background()

	p := testutil.SeedProject(t, env.db, env.org.ID, env.user.ID)
	_, err := projectsSvc.UpdateFieldMapping(ctx, env.org.ID, p.ID, json.RawMessage(`{"subject":"title"}`))
	require.NoError(t, err)
	a := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)
	b := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)

	job, err := svc.Create(ctx, env.org.ID, p.ID, env.user.ID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.Equal(t, jobs.StatusQueued, job.Status)
	require.Equal(t, jobs.TriggerUser, job.TriggeredBy)
	require.Nil(t, job.RetryOfJobID)

	snap := decodeSnapshot(t, job.ConfigSnapshot)
	require.Equal(t, p.ID, snap.ProjectID)
	require.Equal(t, 1, snap.FieldMappingConfigVersion)
	require.JSONEq(t, `{"subject":"title"}`, string(snap.FieldMappingConfig))

	// Editing the project afterwards leaves the job's snapshot alone.
	_, err = projectsSvc.UpdateFieldMapping(ctx, env.org.ID, p.ID, json.RawMessage(`{"subject":"heading"}`))
	require.NoError(t, err)
	stored, err := svc.Get(ctx, env.org.ID, p.ID, job.ID)
	require.NoError(t, err)
	require.Equal(t, 1, decodeSnapshot(t, stored.ConfigSnapshot).FieldMappingConfigVersion)

	links, err := svc.ListDataSources(ctx, env.org.ID, p.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{links[0].DataSourceID, links[1].DataSourceID})

	msg := pub.last(t)
	require.Equal(t, JobQueuedEvent, msg.Event)
	require.Equal(t, job.ID, msg.JobID)
	require.Equal(t, env.org.ID, msg.OrganisationID)
	require.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, msg.DataSourceIDs)
}

func TestJobCreateRejectsBadDataSources(t *testing.T) {
	env := newTestEnv(t)
	pub := &capturePublisher{}
	svc := newJobs(env, pub)
	ctx := context.Background()
	p := testutil.SeedProject(t, env.db, env.org.ID, env.user.ID)
	ds := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)

	_, err := svc.Create(ctx, env.org.ID, p.ID, env.user.ID, []uuid.UUID{ds.ID, ds.ID})
	requireKind(t, err, apierr.KindValidation, "")

	_, err = svc.Create(ctx, env.org.ID, p.ID, env.user.ID, append([]uuid.UUID{ds.ID}, ids(1)...))
	requireKind(t, err, apierr.KindNotFound, "Data source not found")

	foreign := testutil.SeedDataSource(t, env.db, testutil.SeedOrganisation(t, env.db).ID, env.user.ID)
	_, err = svc.Create(ctx, env.org.ID, p.ID, env.user.ID, []uuid.UUID{foreign.ID})
	requireKind(t, err, apierr.KindNotFound, "Data source not found")

	// Nothing was committed or published for the failed attempts.
	list, err := svc.List(ctx, env.org.ID, p.ID, jobs.JobFilter{})
	require.NoError(t, err)
	require.Empty(t, list)
	require.Empty(t, pub.messages)

	job, err := svc.Create(ctx, env.org.ID, p.ID, env.user.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{}, pub.last(t).DataSourceIDs)
	require.Equal(t, jobs.StatusQueued, job.Status)
}

func TestJobRetryCopiesOriginal(t *testing.T) {
	env := newTestEnv(t)
	pub := &capturePublisher{}
	svc := newJobs(env, pub)
	ctx := context.Background()
	p := testutil.SeedProject(t, env.db, env.org.ID, env.user.ID)
	ds := testutil.SeedDataSource(t, env.db, env.org.ID, env.user.ID)

	original, err := svc.Create(ctx, env.org.ID, p.ID, env.user.ID, []uuid.UUID{ds.ID})
	require.NoError(t, err)
	_, err = newProjects(env).UpdateFieldMapping(ctx, env.org.ID, p.ID, json.RawMessage(`{"changed":true}`))
	require.NoError(t, err)

	retry, err := svc.Retry(ctx, env.org.ID, p.ID, original.ID)
	require.NoError(t, err)
	require.NotEqual(t, original.ID, retry.ID)
	require.Equal(t, original.ID, *retry.RetryOfJobID)
	require.Equal(t, jobs.StatusQueued, retry.Status)
	require.Equal(t, original.CreatedByUserID, retry.CreatedByUserID)
	require.True(t, testutil.SameJSON(original.ConfigSnapshot, retry.ConfigSnapshot))

	links, err := svc.ListDataSources(ctx, env.org.ID, p.ID, retry.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, ds.ID, links[0].DataSourceID)

	msg := pub.last(t)
	require.Equal(t, retry.ID, msg.JobID)
	require.Equal(t, original.ID, *msg.RetryOfJobID)

	unchanged, err := svc.Get(ctx, env.org.ID, p.ID, original.ID)
	require.NoError(t, err)
	require.Equal(t, jobs.StatusQueued, unchanged.Status)
}

func TestJobStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	svc := newJobs(env, nil)
	ctx := context.Background()
	p := testutil.SeedProject(t, env.db, env.org.ID, env.user.ID)
	job := testutil.SeedJob(t, env.db, p.ID, env.user.ID, jobs.StatusQueued)

	_, err := svc.UpdateStatus(ctx, env.org.ID, p.ID, job.ID, UpdateJobStatusInput{Status: jobs.StatusCompleted})
	requireKind(t, err, apierr.KindConflict, "Cannot change job status from queued to completed")

	running, err := svc.UpdateStatus(ctx, env.org.ID, p.ID, job.ID, UpdateJobStatusInput{Status: jobs.StatusRunning})
	require.NoError(t, err)
	require.Equal(t, jobs.StatusRunning, running.Status)
	require.NotNil(t, running.StartedAt)
	require.Nil(t, running.CompletedAt)

	failed, err := svc.UpdateStatus(ctx, env.org.ID, p.ID, job.ID, UpdateJobStatusInput{
		Status:       jobs.StatusFailed,
		ErrorDetails: json.RawMessage(`{"stage":"normalize"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, failed.CompletedAt)
	require.JSONEq(t, `{"stage":"normalize"}`, string(failed.ErrorDetails))

	_, err = svc.UpdateStatus(ctx, env.org.ID, p.ID, job.ID, UpdateJobStatusInput{Status: jobs.StatusRunning})
	requireKind(t, err, apierr.KindConflict, "")

	_, err = svc.UpdateStatus(ctx, env.org.ID, p.ID, job.ID, UpdateJobStatusInput{Status: "paused"})
	requireKind(t, err, apierr.KindValidation, "Invalid status: paused")
}

func TestJobsAreHiddenFromOtherOrganisations(t *testing.T) {
	env := newTestEnv(t)
	svc := newJobs(env, nil)
	p := testutil.SeedProject(t, env.db, env.org.ID, env.user.ID)
	job := testutil.SeedJob(t, env.db, p.ID, env.user.ID, jobs.StatusQueued)
	other := testutil.SeedOrganisation(t, env.db)

	_, err := svc.Get(context.Background(), other.ID, p.ID, job.ID)
	requireKind(t, err, apierr.KindNotFound, "Project not found")

	_, err = svc.Retry(context.Background(), other.ID, p.ID, job.ID)
	requireKind(t, err, apierr.KindNotFound, "Project not found")
}
