package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetracker/crimetracker-api/internal/testutil"
)

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "test:stats", []byte(`{"total":1}`), time.Minute))

		got, err := repo.Get(ctx, "test:stats")
		require.NoError(t, err)
		assert.JSONEq(t, `{"total":1}`, string(got))

		ttl := client.TTL(ctx, "cache:test:stats").Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		got, err := repo.Get(ctx, "test:missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "test:gone", []byte("x"), time.Minute))
		deleted, err := repo.Delete(ctx, "test:gone")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "test:gone")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty key validation", func(t *testing.T) {
		assert.Error(t, repo.Set(ctx, "", []byte("x"), time.Minute))
		_, err := repo.Get(ctx, "")
		assert.Error(t, err)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}
