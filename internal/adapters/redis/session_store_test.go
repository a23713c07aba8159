package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func newSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:          id,
		SubjectID:   "subject-123",
		Email:       "user@example.com",
		DisplayName: "Test User",
		ExpiresAt:   time.Now().Add(ttl),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	session := newSession("test-session-1", 30*time.Minute)
	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.SubjectID, retrieved.SubjectID)
	assert.Equal(t, session.Email, retrieved.Email)
	assert.Equal(t, session.DisplayName, retrieved.DisplayName)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "non-existent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("test-session-delete", 30*time.Minute)))
	require.NoError(t, store.Delete(ctx, "test-session-delete"))

	_, err := store.Get(ctx, "test-session-delete")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("test-session-ttl", 100*time.Millisecond)))
	time.Sleep(200 * time.Millisecond)

	_, err := store.Get(ctx, "test-session-ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_ExpiredOnRead(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("clock-skew", 30*time.Minute)))

	// Advance the store clock past ExpiresAt while the Redis key is still live.
	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := store.Get(ctx, "clock-skew")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), client.Exists(ctx, "session:clock-skew").Val())
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStoreWithPrefix(client, "test-prefix:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("prefix-test", 30*time.Minute)))
	assert.Equal(t, int64(1), client.Exists(ctx, "test-prefix:prefix-test").Val())

	retrieved, err := store.Get(ctx, "prefix-test")
	require.NoError(t, err)
	assert.Equal(t, "prefix-test", retrieved.ID)
}

func TestSessionStore_SaveRejects(t *testing.T) {
	client := setupTestRedis(t)

	store := NewSessionStore(client)
	ctx := context.Background()

	err := store.Save(ctx, newSession("", 30*time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")

	err = store.Save(ctx, newSession("expired-session", -time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is expired")
}
