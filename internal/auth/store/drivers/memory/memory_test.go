package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(t *testing.T) (*memory.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return memory.New(c.now), c
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Save(ctx, "rt-1", "real-42", time.Hour))

	owner, err := s.Lookup(ctx, "rt-1")
	require.NoError(t, err)
	require.Equal(t, "real-42", owner)

	require.NoError(t, s.Delete(ctx, "rt-1"))
	_, err = s.Lookup(ctx, "rt-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "rt-1"), "deleting twice is fine")
}

func TestLookupNeverSaved(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Lookup(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokenExpires(t *testing.T) {
	ctx := context.Background()
	s, c := newStore(t)

	require.NoError(t, s.Save(ctx, "rt", "real-1", time.Minute))
	c.advance(59 * time.Second)
	_, err := s.Lookup(ctx, "rt")
	require.NoError(t, err)

	c.advance(time.Second)
	_, err = s.Lookup(ctx, "rt")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveRejectsNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for _, ttl := range []time.Duration{0, -time.Second} {
		require.ErrorIs(t, s.Save(ctx, "rt", "real-1", ttl), store.ErrInvalidTTL)
	}
	_, err := s.Lookup(ctx, "rt")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Zero(t, s.Len())
}

func TestConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Save(ctx, "rt", "real-1", time.Hour))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "rt"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	_, err := s.Lookup(ctx, "rt")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	s, c := newStore(t)

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked, "absence means not revoked")

	require.NoError(t, s.Revoke(ctx, "jti-1", 10*time.Second))
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	c.advance(10 * time.Second)
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked, "entry must not outlive its ttl")

	require.NoError(t, s.Revoke(ctx, "jti-2", 0))
	revoked, _ = s.IsRevoked(ctx, "jti-2")
	require.False(t, revoked)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s, c := newStore(t)

	require.NoError(t, s.Save(ctx, "short", "a", time.Minute))
	require.NoError(t, s.Save(ctx, "long", "b", time.Hour))
	require.NoError(t, s.Revoke(ctx, "jti", time.Minute))
	require.Equal(t, 3, s.Len())

	c.advance(2 * time.Minute)
	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, s.Len())

	owner, err := s.Lookup(ctx, "long")
	require.NoError(t, err)
	require.Equal(t, "b", owner)
}
