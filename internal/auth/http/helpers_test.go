package http_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/tokenauth/internal/auth/http"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "http-test-secret-0123456789abcdefgh"
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

type server struct {
	clock  *testClock
	users  *sqlite.Store
	svc    *service.TokenService
	router *authhttp.Router
	client *authsdk.Client
}

type option func(*options)

type options struct {
	tokens store.TokenStore
	limits authhttp.Limits
}

func withTokenStore(ts store.TokenStore) option {
	return func(o *options) { o.tokens = ts }
}

func withLimits(l authhttp.Limits) option {
	return func(o *options) { o.limits = l }
}

// newServer wires the real services over sqlite and the memory token store
// and serves them from an httptest.Server.
func newServer(t *testing.T, opts ...option) *server {
	t.Helper()

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	o := options{tokens: memory.New(clock.Now)}
	for _, opt := range opts {
		opt(&o)
	}

	users, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Close() })
	require.NoError(t, users.ApplyMigrations())

	key := jwtx.MustSigningKey(testSecret)
	verifier := jwtx.NewVerifierHS256(key, clock.Now)

	svc := &service.TokenService{
		Signer:        jwtx.NewSignerHS256(key),
		Verifier:      verifier,
		RefreshTokens: o.tokens,
		Revocations:   o.tokens,
		Users:         users,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Now:           clock.Now,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", users, o.tokens, o.limits, logger)
	router.TokenService = svc
	router.Validator = &service.TokenValidator{Verifier: verifier, Revocations: o.tokens}
	router.Resolver = &service.AuthResolver{Users: users}
	router.ApplyRoutes()

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &server{
		clock:  clock,
		users:  users,
		svc:    svc,
		router: router,
		client: authsdk.NewClient(ts.URL),
	}
}

func (s *server) createUser(t *testing.T, realID, nickname string, role domain.Role) domain.User {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), domain.User{
		RealID:   realID,
		Nickname: nickname,
		Name:     "Name of " + nickname,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

// login stands in for the external sign-in step and issues a pair for u.
func (s *server) login(t *testing.T, u domain.User) *domain.TokenPair {
	t.Helper()
	pair, err := s.svc.Issue(context.Background(), domain.NewPrincipal(u, u.Role))
	require.NoError(t, err)
	return pair
}

// requireOAuth2Error asserts err is an OAuth2 error equal to want.
func requireOAuth2Error(t *testing.T, err error, want *authsdk.OAuth2Error) *authsdk.OAuth2Error {
	t.Helper()
	require.ErrorIs(t, err, want)
	var oe *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oe)
	return oe
}

// brokenTokens fails every call the way a driver does when its backend is
// unreachable.
type brokenTokens struct{}

var errDown = fmt.Errorf("%w: connection refused", store.ErrUnavailable)

func (brokenTokens) Save(context.Context, string, string, time.Duration) error { return errDown }
func (brokenTokens) Lookup(context.Context, string) (string, error)            { return "", errDown }
func (brokenTokens) Delete(context.Context, string) error                      { return errDown }
func (brokenTokens) Consume(context.Context, string) (string, error)           { return "", errDown }
func (brokenTokens) Revoke(context.Context, string, time.Duration) error       { return errDown }
func (brokenTokens) IsRevoked(context.Context, string) (bool, error)           { return false, errDown }
func (brokenTokens) Ping(context.Context) error                                { return errDown }
func (brokenTokens) Close() error                                              { return nil }
