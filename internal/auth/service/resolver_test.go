package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.createUser(t, "real-42", "abc", domain.RoleUser)

	pair, err := f.svc.Issue(ctx, domain.NewPrincipal(u, u.Role))
	require.NoError(t, err)
	claims, err := f.validator.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)

	p, err := f.resolver.Resolve(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.ID)
	require.Equal(t, "real-42", p.RealID)
	require.Equal(t, "abc", p.Nickname)
	require.Equal(t, domain.RoleUser, p.Role)
	require.Equal(t, []string{"USER"}, p.Authorities)
}

func TestResolveFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "real-1", "one", domain.RoleUser)
	f.createUser(t, "real-gone", "gone", domain.RoleUser)
	require.NoError(t, f.users.SoftDelete(ctx, "real-gone"))

	claimsFor := func(sub, role string) jwtx.Claims {
		// Round trip through a real token so the claims are what the
		// validator would hand over.
		tok := f.sign(t, jwtx.NewAccessClaims(sub, "nick", role, "", time.Hour, f.clock.Now()))
		c, err := f.validator.Verify(ctx, tok)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		claims jwtx.Claims
		want   error
	}{
		{"missing role", claimsFor("real-1", ""), service.ErrMissingAuthorization},
		{"blank role", claimsFor("real-1", "  "), service.ErrMissingAuthorization},
		{"unknown user", claimsFor("real-404", "USER"), service.ErrPrincipalNotFound},
		{"deleted user", claimsFor("real-gone", "USER"), service.ErrPrincipalNotFound},
		{"unknown role", claimsFor("real-1", "ROOT"), service.ErrInvalidRole},
		{"lowercase role", claimsFor("real-1", "user"), service.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.resolver.Resolve(ctx, tt.claims)
			require.ErrorIs(t, err, tt.want)
			require.Zero(t, p.ID)
			require.Empty(t, p.Authorities)
		})
	}
}

func TestResolveUserStoreDown(t *testing.T) {
	r := &service.AuthResolver{Users: brokenStore{}}
	_, err := r.Resolve(context.Background(), jwtx.Claims{Role: "USER"})
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
}

func TestResolveTakesIdentityFromClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.createUser(t, "real-9", "dbnick", domain.RoleUser)

	tok := f.sign(t, jwtx.NewAccessClaims("real-9", "claimnick", "ADMIN", "ClaimName", time.Hour, f.clock.Now()))
	claims, err := f.validator.Verify(ctx, tok)
	require.NoError(t, err)

	p, err := f.resolver.Resolve(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.ID, "the id still comes from the user store")
	require.Equal(t, "real-9", p.RealID)
	require.Equal(t, "claimnick", p.Nickname)
	require.Equal(t, "ClaimName", p.Name)
	require.Equal(t, domain.RoleAdmin, p.Role)
	require.Equal(t, []string{"ADMIN"}, p.Authorities)
}

func TestResolveCorruptUserRowIsFinal(t *testing.T) {
	r := &service.AuthResolver{Users: corruptUsers{}}
	_, err := r.Resolve(context.Background(), jwtx.Claims{Role: "USER"})
	require.ErrorIs(t, err, service.ErrInvalidRole)
	require.NotErrorIs(t, err, service.ErrStoreUnavailable)
	require.False(t, service.Retryable(err))
	require.Equal(t, "invalid_role", service.Reason(err))
}
