// Package memory is a single-process TokenStore. It is meant for local
// development and tests; entries are lost on restart and are not shared
// between replicas.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store keeps refresh tokens and revocations in maps guarded by one mutex.
// Expired entries read as absent straight away; DeleteExpired reclaims the
// memory.
type Store struct {
	mu      sync.Mutex
	refresh map[string]entry
	revoked map[string]entry
	now     func() time.Time
}

var _ store.TokenStore = (*Store)(nil)

// New returns an empty store. A nil now falls back to time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		refresh: make(map[string]entry),
		revoked: make(map[string]entry),
		now:     now,
	}
}

func (s *Store) Save(_ context.Context, token, ownerID string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", store.ErrInvalidTTL, ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[cryptox.FingerprintToken(token)] = entry{value: ownerID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(s.refresh, cryptox.FingerprintToken(token))
	if !ok {
		return "", store.ErrNotFound
	}
	return e.value, nil
}

func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, cryptox.FingerprintToken(token))
	return nil
}

func (s *Store) Consume(_ context.Context, token string) (string, error) {
	key := cryptox.FingerprintToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(s.refresh, key)
	delete(s.refresh, key)
	if !ok {
		return "", store.ErrNotFound
	}
	return e.value, nil
}

func (s *Store) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = entry{expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(s.revoked, jti)
	return ok, nil
}

// DeleteExpired drops every entry past its TTL and returns how many went.
// The housekeeping loop calls it on a ticker.
func (s *Store) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, m := range []map[string]entry{s.refresh, s.revoked} {
		for k, e := range m {
			if !now.Before(e.expiresAt) {
				delete(m, k)
				n++
			}
		}
	}
	return n, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refresh) + len(s.revoked)
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// live must be called with mu held.
func (s *Store) live(m map[string]entry, key string) (entry, bool) {
	e, ok := m[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return entry{}, false
	}
	return e, true
}
