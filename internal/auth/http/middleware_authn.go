package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/authctx"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// Authenticate resolves the bearer token, if any, into a principal.
//
// Requests without an Authorization: Bearer header continue anonymously;
// pair with httpx.RequireAuthenticated where a principal is mandatory. A
// bearer that fails verification or resolution is answered with a 401 (or
// 503 when a store is down) and never reaches next.
func Authenticate(validator *service.TokenValidator, resolver *service.AuthResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httpx.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := validator.Verify(ctx, token)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			p, err := resolver.Resolve(ctx, claims)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			ctx = authctx.WithPrincipal(ctx, p)
			ctx = httpx.WithIdentity(ctx, p.RealID, p.Authorities)
			ctx = slogx.With(ctx, "sub", p.RealID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
