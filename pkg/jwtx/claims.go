package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. Deployments normally override both through
// JWT_ACCESS_EXPIRED / JWT_REFRESH_EXPIRED.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Claims are the access-token claims. The registered part carries sub, jti,
// iat and exp; the rest is what downstream authorization reads.
type Claims struct {
	jwt.RegisteredClaims

	// Nickname shown to other users.
	Nickname string `json:"nickname,omitempty"`

	// Role is the authorization level, e.g. "USER". Tokens without it are
	// rejected when resolving a principal.
	Role string `json:"role,omitempty"`

	// Name is the display name of the user.
	Name string `json:"name,omitempty"`
}

// NewAccessClaims builds claims for a freshly issued access token.
func NewAccessClaims(
	subject string,
	nickname, role, name string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Nickname: nickname,
		Role:     role,
		Name:     name,
	}
}

// NewJTI returns a random identifier for the "jti" claim. The jti is the
// revocation key, so it only has to be unique, not secret.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// RemainingTTL is how long the token stays usable from now. Zero once the
// token is expired or has no exp at all.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
