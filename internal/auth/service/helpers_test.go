package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "service-test-secret-0123456789abcdef"
	accessTTL  = 30 * time.Minute
	refreshTTL = 14 * 24 * time.Hour
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock     *testClock
	signer    *jwtx.HS256Signer
	verifier  *jwtx.HS256Verifier
	tokens    *memory.Store
	users     *sqlite.Store
	svc       *service.TokenService
	validator *service.TokenValidator
	resolver  *service.AuthResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	key := jwtx.MustSigningKey(testSecret)

	users, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Close() })
	require.NoError(t, users.ApplyMigrations())

	f := &fixture{
		clock:    clock,
		signer:   jwtx.NewSignerHS256(key),
		verifier: jwtx.NewVerifierHS256(key, clock.Now),
		tokens:   memory.New(clock.Now),
		users:    users,
	}

	f.svc = &service.TokenService{
		Signer:        f.signer,
		Verifier:      f.verifier,
		RefreshTokens: f.tokens,
		Revocations:   f.tokens,
		Users:         f.users,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Now:           clock.Now,
	}
	f.validator = &service.TokenValidator{Verifier: f.verifier, Revocations: f.tokens}
	f.resolver = &service.AuthResolver{Users: f.users}

	return f
}

func (f *fixture) createUser(t *testing.T, realID, nickname string, role domain.Role) domain.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), domain.User{
		RealID:   realID,
		Nickname: nickname,
		Name:     "Name of " + nickname,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

// sign mints a token with arbitrary claims using the fixture key.
func (f *fixture) sign(t *testing.T, claims jwtx.Claims) string {
	t.Helper()
	tok, err := f.signer.Sign(claims)
	require.NoError(t, err)
	return tok
}

// brokenStore fails every call the way a driver does when its backend is
// unreachable.
type brokenStore struct{}

var errDown = fmt.Errorf("%w: connection refused", store.ErrUnavailable)

func (brokenStore) Save(context.Context, string, string, time.Duration) error { return errDown }
func (brokenStore) Lookup(context.Context, string) (string, error)            { return "", errDown }
func (brokenStore) Delete(context.Context, string) error                      { return errDown }
func (brokenStore) Consume(context.Context, string) (string, error)           { return "", errDown }
func (brokenStore) Revoke(context.Context, string, time.Duration) error       { return errDown }
func (brokenStore) IsRevoked(context.Context, string) (bool, error)           { return false, errDown }
func (brokenStore) Ping(context.Context) error                                { return errDown }

func (brokenStore) FindActiveByRealID(context.Context, string) (domain.User, error) {
	return domain.User{}, errDown
}

// switchableUsers passes through to a real store until down is set.
type switchableUsers struct {
	store.Users
	mu   sync.Mutex
	down bool
}

func (u *switchableUsers) setDown(down bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.down = down
}

func (u *switchableUsers) FindActiveByRealID(ctx context.Context, realID string) (domain.User, error) {
	u.mu.Lock()
	down := u.down
	u.mu.Unlock()
	if down {
		return domain.User{}, errDown
	}
	return u.Users.FindActiveByRealID(ctx, realID)
}

// saveFailingTokens is a working refresh store whose Save always fails.
type saveFailingTokens struct {
	store.RefreshTokens
}

func (saveFailingTokens) Save(context.Context, string, string, time.Duration) error { return errDown }

// corruptUsers returns what a driver reports for a row it can't decode.
type corruptUsers struct{ brokenStore }

func (corruptUsers) FindActiveByRealID(context.Context, string) (domain.User, error) {
	return domain.User{}, fmt.Errorf("%w: user 1: %w", store.ErrInvalidRecord, domain.ErrInvalidRole)
}
