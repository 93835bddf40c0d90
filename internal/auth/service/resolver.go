package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// AuthResolver turns verified claims into the principal for a request.
type AuthResolver struct {
	Users store.Users
}

// Resolve expects claims that already passed TokenValidator.Verify. A token
// without a role is refused outright; it never picks up a default role.
//
// The user store only supplies the numeric id and confirms the account is
// still active. Everything else comes from the signed claims, so a renamed
// user keeps the old nickname until the next refresh.
func (r *AuthResolver) Resolve(ctx context.Context, claims jwtx.Claims) (domain.Principal, error) {
	if strings.TrimSpace(claims.Role) == "" {
		return domain.Principal{}, ErrMissingAuthorization
	}

	u, err := r.Users.FindActiveByRealID(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, userLookup(err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %q", ErrInvalidRole, claims.Role)
	}

	return domain.Principal{
		ID:          u.ID,
		RealID:      claims.Subject,
		Nickname:    claims.Nickname,
		Role:        role,
		Name:        claims.Name,
		Authorities: []string{role.String()},
	}, nil
}
