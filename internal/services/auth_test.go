package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/data/repos/testutil"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/ctxutil"
)

const testSecret = "test-secret-test-secret-test-secret"

func newAuth(env *testEnv, revocations RevocationStore) *authService {
	return NewAuthService(env.log, env.users, env.orgs, revocations, testSecret, time.Hour).(*authService)
}

func TestLoginIssuesTokenThatResolvesToCaller(t *testing.T) {
	env := newTestEnv(t)
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	user := testutil.SeedUser(t, env.db, env.org.ID, tenancy.RoleMember, hash)
	auth := newAuth(env, nil)

	res, err := auth.Login(context.Background(), "  "+user.Email+" ", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, user.ID, res.User.ID)

	ctx, err := auth.SetContextFromToken(context.Background(), res.Token)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	require.Equal(t, user.ID, rd.UserID)
	require.Equal(t, env.org.ID, rd.OrganisationID)
	require.Equal(t, "member", rd.Role)
	require.NotEmpty(t, rd.TokenID)

	session, err := auth.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, user.Email, session.Email)
	require.Equal(t, tenancy.RoleMember, session.Role)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	env := newTestEnv(t)
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	user := testutil.SeedUser(t, env.db, env.org.ID, tenancy.RoleMember, hash)
	auth := newAuth(env, nil)

	_, err = auth.Login(context.Background(), user.Email, "wrong-horse")
	requireKind(t, err, apierr.KindUnauthorized, "Invalid email or password")

	_, err = auth.Login(context.Background(), "nobody@example.com", "correct-horse")
	requireKind(t, err, apierr.KindUnauthorized, "Invalid email or password")

	_, err = auth.Login(context.Background(), "", "")
	requireKind(t, err, apierr.KindValidation, "")
}

func TestSetContextFromTokenFailures(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, nil)

	_, err := auth.SetContextFromToken(context.Background(), " ")
	requireKind(t, err, apierr.KindUnauthorized, "No token provided")

	_, err = auth.SetContextFromToken(context.Background(), "not-a-jwt")
	requireKind(t, err, apierr.KindUnauthorized, "Invalid token")

	other := NewAuthService(env.log, env.users, env.orgs, nil, "another-secret", time.Hour)
	foreign, err := other.IssueToken(env.user)
	require.NoError(t, err)
	_, err = auth.SetContextFromToken(context.Background(), foreign)
	requireKind(t, err, apierr.KindUnauthorized, "Invalid token")

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := auth.IssueToken(env.user)
	require.NoError(t, err)
	auth.now = time.Now
	_, err = auth.SetContextFromToken(context.Background(), stale)
	requireKind(t, err, apierr.KindUnauthorized, "Token expired")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	store := &memoryRevocations{}
	auth := newAuth(env, store)

	token, err := auth.IssueToken(env.user)
	require.NoError(t, err)
	ctx, err := auth.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx))
	rd := ctxutil.GetRequestData(ctx)
	require.Contains(t, store.revoked, rd.TokenID)
	require.WithinDuration(t, time.Now().Add(time.Hour), store.revoked[rd.TokenID], time.Minute)

	_, err = auth.SetContextFromToken(context.Background(), token)
	requireKind(t, err, apierr.KindUnauthorized, "Invalid token")
}

func TestSessionRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	_, err := newAuth(env, nil).Session(context.Background())
	requireKind(t, err, apierr.KindUnauthorized, "")
}
