package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// writeServiceError maps the service error taxonomy onto OAuth2 responses.
// Only the short reason code reaches the client; the wrapped detail stays
// in the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())
	reason := service.Reason(err)

	switch {
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Error("token store unavailable", "reason", reason, "error", err)
		authsdk.ErrTemporarilyUnavailable.WriteError(w)

	case errors.Is(err, service.ErrInvalidRefresh):
		log.Info("refresh denied", "reason", reason)
		authsdk.ErrInvalidGrant.WriteError(w)

	case errors.Is(err, service.ErrInvalidTokenFormat),
		errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrRevoked),
		errors.Is(err, service.ErrMissingAuthorization),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrPrincipalNotFound):
		log.Debug("access token rejected", "reason", reason, "error", err)
		invalidToken(reason).WriteError(w)

	default:
		log.Error("unexpected error", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// invalidToken is authsdk.ErrInvalidToken with the reason code as its
// description, so clients can tell an expired token from a revoked one.
func invalidToken(reason string) *authsdk.OAuth2Error {
	e := *authsdk.ErrInvalidToken
	e.Description = reason
	return &e
}

func invalidRequest(description string) *authsdk.OAuth2Error {
	e := *authsdk.ErrInvalidRequest
	e.Description = description
	return &e
}
