package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// TokenValidator decides whether an access token may be used right now.
type TokenValidator struct {
	Verifier    jwtx.Verifier
	Revocations store.Revocations
}

// Verify checks signature, expiry and the revocation list, in that order,
// and returns the claims of a usable token. Failures come back as
// ErrInvalidTokenFormat, ErrExpired, ErrRevoked or ErrStoreUnavailable.
func (v *TokenValidator) Verify(ctx context.Context, accessToken string) (jwtx.Claims, error) {
	claims, err := v.Verifier.Verify(accessToken)
	if err != nil {
		return jwtx.Claims{}, classifyToken(err)
	}

	// Without a jti there is nothing to look up in the blacklist.
	if claims.ID == "" {
		return jwtx.Claims{}, ErrInvalidTokenFormat
	}

	revoked, err := v.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, storeUnavailable(err)
	}
	if revoked {
		return jwtx.Claims{}, ErrRevoked
	}

	return claims, nil
}

// Validate is Verify reduced to a yes/no. Every failure, including a store
// outage, is a no; the cause only goes to the log.
func (v *TokenValidator) Validate(ctx context.Context, accessToken string) bool {
	_, err := v.Verify(ctx, accessToken)
	if err == nil {
		return true
	}

	l := slogx.FromContext(ctx)
	if errors.Is(err, ErrStoreUnavailable) {
		l.Error("access token validation failed", "reason", Reason(err), "error", err)
	} else {
		l.Debug("access token rejected", "reason", Reason(err), "error", err)
	}
	return false
}
