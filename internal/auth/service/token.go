package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// TokenService issues, rotates and revokes token pairs.
type TokenService struct {
	Signer        jwtx.Signer
	Verifier      jwtx.Verifier
	RefreshTokens store.RefreshTokens
	Revocations   store.Revocations
	Users         store.Users
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now defaults to time.Now. It should be the same clock the Verifier
	// uses.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue mints an access token and a refresh token for p and registers the
// refresh token. If the store write fails nothing is returned: a client
// holding a refresh token the store doesn't know about would look logged in
// until its first refresh. Issue never retries; callers start over.
func (s *TokenService) Issue(ctx context.Context, p domain.Principal) (*domain.TokenPair, error) {
	pair, err := s.mint(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := s.RefreshTokens.Save(ctx, pair.RefreshToken, p.RealID, s.RefreshTTL); err != nil {
		slogx.FromContext(ctx).Error("failed to store refresh token", "sub", p.RealID, "error", err)
		return nil, storeUnavailable(err)
	}
	return pair, nil
}

// IssueFor issues a pair for the active user with the given RealID. It is
// the entry point for sign-in flows that have already checked credentials.
func (s *TokenService) IssueFor(ctx context.Context, realID string) (*domain.TokenPair, error) {
	realID = strings.TrimSpace(realID)
	if realID == "" {
		return nil, ErrPrincipalNotFound
	}

	u, err := s.Users.FindActiveByRealID(ctx, realID)
	if err != nil {
		return nil, userLookup(err)
	}
	return s.Issue(ctx, domain.NewPrincipal(u, u.Role))
}

// mint signs the access token and draws the refresh token without touching
// the store.
func (s *TokenService) mint(ctx context.Context, p domain.Principal) (*domain.TokenPair, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	if s.AccessTTL <= 0 || s.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: access %s, refresh %s", ErrNonPositiveTTL, s.AccessTTL, s.RefreshTTL)
	}
	if p.RealID == "" {
		return nil, ErrPrincipalNotFound
	}

	claims := jwtx.NewAccessClaims(p.RealID, p.Nickname, p.Role.String(), p.Name, s.AccessTTL, now)
	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		l.Error("failed to sign access token", "error", err)
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	l.Debug("minted token pair", "sub", p.RealID, "jti", claims.ID)

	return &domain.TokenPair{
		GrantType:    domain.GrantTypeBearer,
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh rotates a refresh token. A token the store doesn't know is
// refused; it never triggers a fresh issue.
//
// Everything that can fail with a store outage runs before the presented
// token is consumed, so a StoreUnavailable from the lookup phase leaves the
// token in place and a retry can still succeed. Once Consume has won, a
// failure to store the replacement is final and reported as
// ErrInvalidRefresh; the client has to sign in again.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return nil, ErrInvalidRefresh
	}

	owner, err := s.RefreshTokens.Lookup(ctx, refreshOpaque)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, storeUnavailable(err)
	}

	// The owner may have been deleted since the token was issued.
	u, err := s.Users.FindActiveByRealID(ctx, owner)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrInvalidRecord) {
			return nil, storeUnavailable(err)
		}
		l.Info("refresh for unusable account", "sub", owner, "error", err)
		if err := s.RefreshTokens.Delete(ctx, refreshOpaque); err != nil {
			l.Warn("failed to drop refresh token of unusable account", "sub", owner, "error", err)
		}
		return nil, ErrInvalidRefresh
	}

	pair, err := s.mint(ctx, domain.NewPrincipal(u, u.Role))
	if err != nil {
		return nil, err
	}

	consumed, err := s.RefreshTokens.Consume(ctx, refreshOpaque)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race against a concurrent refresh or logout.
			return nil, ErrInvalidRefresh
		}
		return nil, storeUnavailable(err)
	}
	if consumed != owner {
		return nil, ErrInvalidRefresh
	}

	if err := s.RefreshTokens.Save(ctx, pair.RefreshToken, owner, s.RefreshTTL); err != nil {
		l.Error("refresh token consumed but replacement not stored", "sub", owner, "error", err)
		return nil, fmt.Errorf("%w: replacement not stored: %v", ErrInvalidRefresh, err)
	}
	return pair, nil
}

// RevokeAccessToken blacklists the token's jti for as long as the token
// would otherwise stay valid. Already expired tokens need no entry.
func (s *TokenService) RevokeAccessToken(ctx context.Context, accessToken string) error {
	claims, err := s.Verifier.ParseClaims(accessToken)
	if err != nil {
		return classifyToken(err)
	}
	return s.revoke(ctx, claims)
}

func (s *TokenService) revoke(ctx context.Context, claims jwtx.Claims) error {
	if claims.ID == "" {
		return ErrInvalidTokenFormat
	}

	ttl := claims.RemainingTTL(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.Revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return storeUnavailable(err)
	}

	slogx.FromContext(ctx).Info("revoked access token",
		slog.String("sub", claims.Subject),
		slog.String("jti", claims.ID),
		slog.Duration("ttl", ttl),
	)
	return nil
}

// Logout revokes the access token and drops the refresh token, if any. A
// refresh token owned by someone else is refused before anything changes;
// one that is already gone is ignored.
func (s *TokenService) Logout(ctx context.Context, accessToken, refreshOpaque string) error {
	claims, err := s.Verifier.ParseClaims(accessToken)
	if err != nil {
		return classifyToken(err)
	}

	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque != "" {
		owner, err := s.RefreshTokens.Lookup(ctx, refreshOpaque)
		switch {
		case errors.Is(err, store.ErrNotFound):
			refreshOpaque = ""
		case err != nil:
			return storeUnavailable(err)
		case owner != claims.Subject:
			slogx.FromContext(ctx).Warn("logout with a foreign refresh token", "sub", claims.Subject)
			return fmt.Errorf("%w: not owned by the caller", ErrInvalidRefresh)
		}
	}

	if err := s.revoke(ctx, claims); err != nil {
		return err
	}

	if refreshOpaque != "" {
		if err := s.RefreshTokens.Delete(ctx, refreshOpaque); err != nil {
			return storeUnavailable(err)
		}
	}
	return nil
}

// SubjectOf returns the subject of a correctly signed token, expired or not.
// Used to work out who has to sign in again.
func (s *TokenService) SubjectOf(accessToken string) (string, error) {
	claims, err := s.Verifier.ParseClaims(accessToken)
	if err != nil {
		return "", classifyToken(err)
	}
	return claims.Subject, nil
}
