// Package authctx carries the resolved principal through a request's
// context. Each request gets its own slot; nothing here is process global.
package authctx

import (
	"context"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
)

// AnonymousID is what CurrentUserID reports when nobody is signed in. Real
// user ids start at 1.
const AnonymousID int64 = 0

type principalKey struct{}

// WithPrincipal returns a copy of ctx that carries p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// CurrentPrincipal returns the principal installed for this request.
func CurrentPrincipal(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// CurrentUserID returns the internal id of the caller, or AnonymousID. It
// never fails so handlers can branch on anonymous callers without an error
// path.
func CurrentUserID(ctx context.Context) int64 {
	if p, ok := CurrentPrincipal(ctx); ok {
		return p.ID
	}
	return AnonymousID
}
