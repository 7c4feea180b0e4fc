package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type fakeRedis struct {
	keys      map[string]time.Duration
	published map[string][][]byte
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]time.Duration{}, published: map[string][][]byte{}}
}

func (f *fakeRedis) SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	f.keys[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	f.published[channel] = append(f.published[channel], message.([]byte))
	return goredis.NewIntResult(1, nil)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func TestTokenRevocations(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewTokenRevocations(testLogger(t), fake)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
	require.Greater(t, fake.keys[revokedKeyPrefix+"jti-1"], 59*time.Minute)

	// Already-expired tokens need no entry.
	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	_, ok := fake.keys[revokedKeyPrefix+"jti-2"]
	require.False(t, ok)

	fake.err = errors.New("connection refused")
	_, err = store.IsRevoked(ctx, "jti-1")
	require.Error(t, err)
}

func TestJobBusPublish(t *testing.T) {
	fake := newFakeRedis()
	bus := NewJobBus(testLogger(t), fake, "")
	require.Equal(t, "processing_jobs", bus.Channel())

	require.NoError(t, bus.Publish(context.Background(), map[string]string{"event": "job.queued", "jobId": "j1"}))
	require.Len(t, fake.published["processing_jobs"], 1)

	var got map[string]string
	require.NoError(t, json.Unmarshal(fake.published["processing_jobs"][0], &got))
	require.Equal(t, "job.queued", got["event"])
	require.Equal(t, "j1", got["jobId"])
}
