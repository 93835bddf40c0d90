package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	redisstore "github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway Redis and returns a client for it. The test
// is skipped when no container runtime is around.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	cl := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, mappedPort.Port())})
	t.Cleanup(func() { _ = cl.Close() })
	return cl
}

func TestRedisStore(t *testing.T) {
	cl := setupRedis(t)
	s := redisstore.NewWithClient(cl, "test:", time.Second)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	t.Run("refresh round trip", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "rt-1", "real-42", time.Minute))

		owner, err := s.Lookup(ctx, "rt-1")
		require.NoError(t, err)
		require.Equal(t, "real-42", owner)

		require.NoError(t, s.Delete(ctx, "rt-1"))
		_, err = s.Lookup(ctx, "rt-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("never saved", func(t *testing.T) {
		_, err := s.Lookup(ctx, "never-saved")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("raw token is not a key", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "rt-raw", "real-1", time.Minute))
		keys, err := cl.Keys(ctx, "test:refresh:*").Result()
		require.NoError(t, err)
		require.NotEmpty(t, keys)
		for _, k := range keys {
			require.NotContains(t, k, "rt-raw")
		}
	})

	t.Run("save sets native ttl", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "rt-ttl", "real-1", 30*time.Second))
		keys, err := cl.Keys(ctx, "test:refresh:*").Result()
		require.NoError(t, err)
		for _, k := range keys {
			ttl, err := cl.TTL(ctx, k).Result()
			require.NoError(t, err)
			require.Positive(t, ttl, "key %s has no expiry", k)
		}
	})

	t.Run("consume is single use", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "rt-once", "real-7", time.Minute))

		owner, err := s.Consume(ctx, "rt-once")
		require.NoError(t, err)
		require.Equal(t, "real-7", owner)

		_, err = s.Consume(ctx, "rt-once")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revocation", func(t *testing.T) {
		revoked, err := s.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.False(t, revoked)

		require.NoError(t, s.Revoke(ctx, "jti-1", time.Minute))
		revoked, err = s.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)

		ttl, err := cl.TTL(ctx, "test:revoked:jti-1").Result()
		require.NoError(t, err)
		require.LessOrEqual(t, ttl, time.Minute)
		require.Positive(t, ttl)
	})

	t.Run("revocation expires", func(t *testing.T) {
		require.NoError(t, s.Revoke(ctx, "jti-short", 200*time.Millisecond))
		require.Eventually(t, func() bool {
			revoked, err := s.IsRevoked(ctx, "jti-short")
			return err == nil && !revoked
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		require.NoError(t, s.Revoke(ctx, "jti-dead", 0))
		revoked, err := s.IsRevoked(ctx, "jti-dead")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("save refuses non-positive ttl", func(t *testing.T) {
		require.ErrorIs(t, s.Save(ctx, "rt-dead", "real-1", 0), store.ErrInvalidTTL)
		_, err := s.Lookup(ctx, "rt-dead")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRedisUnavailableIsNotNotFound(t *testing.T) {
	cl := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = cl.Close() })
	s := redisstore.NewWithClient(cl, "", 500*time.Millisecond)
	ctx := context.Background()

	_, err := s.Lookup(ctx, "rt")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.NotErrorIs(t, err, store.ErrNotFound)

	revoked, err := s.IsRevoked(ctx, "jti")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.False(t, revoked)

	require.ErrorIs(t, s.Save(ctx, "rt", "real-1", time.Minute), store.ErrUnavailable)
	require.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)
}
