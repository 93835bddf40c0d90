package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// refreshSkew refreshes a little before the server would reject the token.
const refreshSkew = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *Client, tokenResp *TokenResponse) *Session {
	s := &Session{client: client}
	s.store(tokenResp)
	return s
}

// store must be called with mu held for writing, or before s is shared.
func (s *Session) store(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshSkew)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(tokenResp)

	return s.accessToken, nil
}

// Me returns the session's user.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Me(ctx, token)
}

// Introspect asks about another token. Needs the ADMIN authority.
func (s *Session) Introspect(ctx context.Context, token string) (*IntrospectionResponse, error) {
	access, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Introspect(ctx, access, token)
}

// Logout ends the session on the server and forgets both tokens.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.Logout(ctx, s.accessToken, s.refreshToken); err != nil {
		return err
	}
	s.accessToken, s.refreshToken = "", ""
	s.expiresAt = time.Time{}
	return nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}
