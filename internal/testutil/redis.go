package testutil

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a client on a flushed test database, or skips the
// test when Redis is unreachable. REDIS_ADDR and TEST_REDIS_DB select the
// target; packages that run in parallel should use distinct DB indexes.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()
	cfg := mustInfraConfig(t)

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		closeAndLog(t, "redis client", client)
		if cfg.redisRequired() {
			t.Fatalf("redis not available at %s: %v", cfg.RedisAddr, err)
		}
		t.Skipf("redis not available at %s: %v", cfg.RedisAddr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		closeAndLog(t, "redis client", client)
		t.Fatalf("flush redis db %d: %v", cfg.RedisDB, err)
	}
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })
	return client
}
