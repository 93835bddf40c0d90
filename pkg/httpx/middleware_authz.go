package httpx

import (
	"net/http"
	"strings"
)

// RequireAuthenticated rejects anonymous callers with a 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromCtx(r.Context()) == "" {
			WriteBearerError(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnyAuthority the caller must hold at least one of the provided
// authorities. Anonymous callers get a 401, authenticated ones a 403.
func RequireAnyAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, a := range required {
		want[a] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authoritiesFromCtx(r.Context()) {
				if _, ok := want[a]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeInsufficientAuthority(w, required...)
		}))
	}
}

// RFC 6750-style response for a caller that lacks the authority.
func writeInsufficientAuthority(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "insufficient_scope",
		"error_description": "the caller lacks the required authority",
	})
}
