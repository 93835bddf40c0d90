package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/authctx"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// MeHandler serves GET /v1/users/me from the principal Authenticate put in
// the context. It never touches a store itself.
type MeHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the caller. Anonymous callers get id 0 and authenticated false.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse		"Current principal"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid, expired or revoked access token"
//	@Failure		503	{object}	authsdk.ErrorResponse	"Token store unavailable"
//	@Router			/v1/users/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := authctx.CurrentPrincipal(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{ID: authctx.AnonymousID})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		ID:            p.ID,
		Authenticated: true,
		RealID:        p.RealID,
		Nickname:      p.Nickname,
		Name:          p.Name,
		Role:          p.Role.String(),
		Authorities:   p.Authorities,
	})
}
