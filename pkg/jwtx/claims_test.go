package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewAccessClaims("real-42", "abc", "USER", "Alice", 10*time.Minute, now)

	require.Equal(t, "real-42", c.Subject)
	require.Equal(t, "abc", c.Nickname)
	require.Equal(t, "USER", c.Role)
	require.Equal(t, "Alice", c.Name)
	require.True(t, now.Equal(c.IssuedAt.Time))
	require.True(t, now.Add(10*time.Minute).Equal(c.ExpiresAt.Time))
	require.NotEmpty(t, c.ID)

	other := jwtx.NewAccessClaims("real-42", "abc", "USER", "Alice", 10*time.Minute, now)
	require.NotEqual(t, c.ID, other.ID, "jti must be fresh per token")
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry(now))
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(now), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(now), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.ErrorIs(t, claims.ValidateExpiry(now), jwtx.ErrInvalidClaim)
	})
}

func TestRemainingTTL(t *testing.T) {
	now := time.Now().UTC()

	live := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(90 * time.Second)),
	}}
	require.InDelta(t, (90 * time.Second).Seconds(), live.RemainingTTL(now).Seconds(), 1)

	expired := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}}
	require.Zero(t, expired.RemainingTTL(now))

	require.Zero(t, (&jwtx.Claims{}).RemainingTTL(now))
}
