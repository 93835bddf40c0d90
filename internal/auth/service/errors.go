package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

var (
	ErrInvalidTokenFormat   = errors.New("invalid_token_format")
	ErrExpired              = errors.New("token_expired")
	ErrRevoked              = errors.New("token_revoked")
	ErrMissingAuthorization = errors.New("missing_authorization")
	ErrInvalidRole          = errors.New("invalid_role")
	ErrPrincipalNotFound    = errors.New("principal_not_found")
	ErrStoreUnavailable     = errors.New("store_unavailable")
	ErrInvalidRefresh       = errors.New("invalid_refresh_token")

	// ErrNonPositiveTTL means the TokenService was built with a lifetime
	// that would issue tokens the store can't hold.
	ErrNonPositiveTTL = errors.New("service: token lifetimes must be positive")
)

// taxonomy is checked in order by Reason.
var taxonomy = []error{
	ErrStoreUnavailable,
	ErrInvalidTokenFormat,
	ErrExpired,
	ErrRevoked,
	ErrMissingAuthorization,
	ErrInvalidRole,
	ErrPrincipalNotFound,
	ErrInvalidRefresh,
}

// Reason returns the short code of the service error wrapped in err, or
// "internal" when err is not one of ours. Safe to show to clients.
func Reason(err error) string {
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal"
}

// Retryable reports whether the caller may retry the operation as is. Only
// store outages qualify; every other failure is final for the request.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// classifyToken folds jwtx failures into the service taxonomy. Expiry is
// kept apart; everything else about a bad token is a format problem.
func classifyToken(err error) error {
	if errors.Is(err, jwtx.ErrExpired) {
		return fmt.Errorf("%w: %w", ErrExpired, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidTokenFormat, err)
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// userLookup folds a Users.FindActiveByRealID failure into the taxonomy. A
// row with a role outside the closed set is final, not an outage.
func userLookup(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrPrincipalNotFound
	case errors.Is(err, store.ErrInvalidRecord):
		return fmt.Errorf("%w: %w", ErrInvalidRole, err)
	default:
		return storeUnavailable(err)
	}
}
