// Package redis stores refresh tokens and access-token revocations in Redis,
// relying on native key expiry for cleanup.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis token store. Defaults are applied by envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// ENV: REDIS_PASSWORD
	Password string `env:"REDIS_PASSWORD"`
	// ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
	// KeyPrefix for all keys. ENV: REDIS_KEY_PREFIX
	KeyPrefix string `env:"REDIS_KEY_PREFIX,default=auth:"`
	// OpTimeout bounds every single Redis call. ENV: REDIS_OP_TIMEOUT
	OpTimeout time.Duration `env:"REDIS_OP_TIMEOUT,default=2s"`
}

const (
	defaultKeyPrefix = "auth:"
	defaultTimeout   = 2 * time.Second

	revokedMarker = "1"
)

type Store struct {
	client    *redis.Client
	keyPrefix string
	timeout   time.Duration
}

var _ store.TokenStore = (*Store)(nil)

// New dials Redis and checks the connection with a PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cl := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	s := NewWithClient(cl, cfg.KeyPrefix, cfg.OpTimeout)
	if err := s.Ping(ctx); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return s, nil
}

// NewWithClient wraps an existing client. An empty prefix or a zero timeout
// gets the defaults.
func NewWithClient(cl *redis.Client, keyPrefix string, timeout time.Duration) *Store {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{client: cl, keyPrefix: keyPrefix, timeout: timeout}
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return mapErr(s.client.Ping(ctx).Err())
}

// --- Key helpers ---

func (s *Store) refreshKey(token string) string { return s.keyPrefix + "refresh:" + cryptox.FingerprintToken(token) }
func (s *Store) revokedKey(jti string) string   { return s.keyPrefix + "revoked:" + jti }

// --- Refresh tokens ---

func (s *Store) Save(ctx context.Context, token, ownerID string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", store.ErrInvalidTTL, ttl)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return mapErr(s.client.Set(ctx, s.refreshKey(token), ownerID, ttl).Err())
}

func (s *Store) Lookup(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	owner, err := s.client.Get(ctx, s.refreshKey(token)).Result()
	if err != nil {
		return "", mapErr(err)
	}
	return owner, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return mapErr(s.client.Del(ctx, s.refreshKey(token)).Err())
}

// Consume uses GETDEL (Redis >= 6.2) so the read and the delete can't
// interleave with another refresh of the same token.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	owner, err := s.client.GetDel(ctx, s.refreshKey(token)).Result()
	if err != nil {
		return "", mapErr(err)
	}
	return owner, nil
}

// --- Revocations ---

func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return mapErr(s.client.Set(ctx, s.revokedKey(jti), revokedMarker, ttl).Err())
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.client.Exists(ctx, s.revokedKey(jti)).Result()
	if err != nil {
		return false, mapErr(err)
	}
	return n > 0, nil
}

// mapErr turns redis.Nil into store.ErrNotFound and anything else into
// store.ErrUnavailable.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return store.ErrNotFound
	default:
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
}
