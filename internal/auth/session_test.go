package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/session"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client, "")
	return NewSessionManager(newTestTokenManager(), store, nil), mr
}

func testSnapshot() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		ID:    "u1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  domain.RoleUser,
		Tickets: []domain.TicketStub{
			{Code: "T1", OrganizerName: "AcmeFest"},
		},
	}
}

func TestSessionManager_IssuePairWritesSession(t *testing.T) {
	mgr, mr := newTestSessionManager(t)
	ctx := context.Background()

	pair, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	assert.True(t, mr.Exists("u1"))
	assert.Equal(t, 20*time.Minute, mr.TTL("u1"))

	got, err := mgr.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	require.Len(t, got.Tickets, 1)
	assert.Equal(t, "T1", got.Tickets[0].Code)
}

func TestSessionManager_VerifyAccess(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	pair, err := mgr.IssuePair(context.Background(), testSnapshot())
	require.NoError(t, err)

	claims, err := mgr.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.AccountID)

	_, err = mgr.VerifyAccess("")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	_, err = mgr.VerifyAccess(pair.RefreshToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestSessionManager_VerifyAccessIgnoresSession(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	ctx := context.Background()
	pair, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	require.NoError(t, mgr.Invalidate(ctx, "u1"))

	_, err = mgr.VerifyAccess(pair.AccessToken)
	assert.NoError(t, err)
}

func TestSessionManager_RefreshRotates(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	ctx := context.Background()
	first, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	next, snapshot, err := mgr.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", snapshot.ID)
	assert.NotEqual(t, first.AccessToken, next.AccessToken)
	assert.NotEqual(t, first.RefreshToken, next.RefreshToken)

	claims, err := mgr.VerifyAccess(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.AccountID)
}

func TestSessionManager_RefreshFailsAfterInvalidate(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	ctx := context.Background()
	pair, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	require.NoError(t, mgr.Invalidate(ctx, "u1"))

	_, _, err = mgr.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

// logoutAfterGet drops the session right after it has been read, the way a
// concurrent logout lands between lookup and rewrite.
type logoutAfterGet struct {
	session.Store
}

func (s logoutAfterGet) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return raw, s.Store.Delete(ctx, key)
}

func TestSessionManager_RefreshDoesNotReviveConcurrentLogout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client, "")
	ctx := context.Background()

	pair, err := NewSessionManager(newTestTokenManager(), store, nil).IssuePair(ctx, testSnapshot())
	require.NoError(t, err)
	require.True(t, mr.Exists("u1"))

	mgr := NewSessionManager(newTestTokenManager(), logoutAfterGet{store}, nil)
	_, _, err = mgr.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
	assert.False(t, mr.Exists("u1"))
}

func TestSessionManager_RefreshRenewsSessionWindow(t *testing.T) {
	mgr, mr := newTestSessionManager(t)
	ctx := context.Background()
	pair, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	mr.FastForward(5 * time.Minute)
	_, _, err = mgr.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, mr.TTL("u1"))
}

func TestSessionManager_RefreshRejectsBadTokens(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	ctx := context.Background()
	pair, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", pair.AccessToken} {
		_, _, err := mgr.Refresh(ctx, tok)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated), "token %q", tok)
	}
}

func TestSessionManager_SessionExpiresWithRefreshWindow(t *testing.T) {
	mgr, mr := newTestSessionManager(t)
	ctx := context.Background()
	_, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	mr.FastForward(21 * time.Minute)
	_, err = mgr.Lookup(ctx, "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestSessionManager_Sync(t *testing.T) {
	mgr, mr := newTestSessionManager(t)
	ctx := context.Background()

	// no session: nothing is created
	require.NoError(t, mgr.Sync(ctx, testSnapshot()))
	assert.False(t, mr.Exists("u1"))

	_, err := mgr.IssuePair(ctx, testSnapshot())
	require.NoError(t, err)

	updated := testSnapshot()
	updated.Name = "Ada L."
	updated.Tickets = nil
	require.NoError(t, mgr.Sync(ctx, updated))

	got, err := mgr.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Empty(t, got.Tickets)
}

func TestSessionManager_LookupDropsCorruptSession(t *testing.T) {
	mgr, mr := newTestSessionManager(t)
	require.NoError(t, mr.Set("u1", "{not json"))

	_, err := mgr.Lookup(context.Background(), "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
	assert.False(t, mr.Exists("u1"))
}

func TestSessionManager_StoreFailureIsInternal(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mgr := NewSessionManager(newTestTokenManager(), session.NewRedisStore(client, ""), nil)
	mr.Close()

	_, err = mgr.IssuePair(context.Background(), testSnapshot())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
