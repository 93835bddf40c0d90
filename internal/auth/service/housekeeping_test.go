package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) DeleteExpired(context.Context) (int, error) {
	s.calls.Add(1)
	return 0, s.err
}

func TestHousekeepingRunsSweepers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	failing := &countingSweeper{err: errors.New("boom")}
	ok := &countingSweeper{}

	hk := service.NewHousekeepingService(logger, 10*time.Millisecond, failing, ok)
	hk.Start()

	require.Eventually(t, func() bool {
		return ok.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	hk.Stop()
	require.GreaterOrEqual(t, failing.calls.Load(), int32(2), "a failing sweeper must not block the others")
}

func TestHousekeepingDefaultsInterval(t *testing.T) {
	hk := service.NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.Equal(t, time.Hour, hk.Interval)
}

func TestHousekeepingSweepsMemoryStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pair, err := f.svc.Issue(ctx, principal42())
	require.NoError(t, err)
	require.NoError(t, f.svc.RevokeAccessToken(ctx, pair.AccessToken))
	require.Equal(t, 2, f.tokens.Len())

	f.clock.Advance(refreshTTL)

	hk := service.NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, f.tokens)
	hk.Start()
	require.Eventually(t, func() bool { return f.tokens.Len() == 0 }, time.Second, 5*time.Millisecond)
	hk.Stop()
}
