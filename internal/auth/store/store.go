package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable wraps every backend failure (timeouts, dropped
	// connections). It never means "absent"; callers must not treat it as
	// a miss.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrInvalidRecord means a row was read but holds a value the domain
	// rejects. Retrying returns the same row.
	ErrInvalidRecord = errors.New("store: invalid record")

	// ErrInvalidTTL is returned by Save for a non-positive ttl. Nothing is
	// written.
	ErrInvalidTTL = errors.New("store: ttl must be positive")
)

// Users is the read side of the account store the resolver depends on.
// Concrete drivers (sqlite) also expose write methods for provisioning.
type Users interface {
	// FindActiveByRealID returns the non-deleted user with the given stable
	// identifier, or ErrNotFound.
	FindActiveByRealID(ctx context.Context, realID string) (domain.User, error)

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// RefreshTokens maps an opaque refresh token to the RealID that owns it.
// Drivers key entries by cryptox.FingerprintToken, never by the raw token.
type RefreshTokens interface {
	// Save stores token for ownerID. The entry disappears after ttl, which
	// must be positive.
	Save(ctx context.Context, token, ownerID string, ttl time.Duration) error

	// Lookup returns the owner of token, or ErrNotFound.
	Lookup(ctx context.Context, token string) (string, error)

	// Delete removes token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// Consume looks token up and deletes it in one step, so two concurrent
	// refreshes with the same token can't both succeed.
	Consume(ctx context.Context, token string) (string, error)
}

// Revocations is the access-token blacklist, keyed by jti.
type Revocations interface {
	// Revoke blacklists jti for ttl. A ttl <= 0 is a no-op since the token
	// it would block has already expired.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti is blacklisted. No entry means false.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenStore is what a token-store driver provides: both key spaces plus a
// health check for /readyz.
type TokenStore interface {
	RefreshTokens
	Revocations

	Ping(ctx context.Context) error
	Close() error
}
