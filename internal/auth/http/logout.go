package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. It must sit behind
// Authenticate and httpx.RequireAuthenticated.
type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented access token for the rest of its lifetime and deletes the submitted refresh token, if any. A refresh token owned by another user is refused with invalid_grant and nothing is revoked.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			application/x-www-form-urlencoded
//	@Param			refresh_token	formData	string	false	"Refresh token to delete"
//	@Success		204				"Logged out"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		503				{object}	authsdk.ErrorResponse	"Token store unavailable"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	// Authenticate already accepted this header.
	access, _ := httpx.BearerToken(r)

	if err := h.TokenService.Logout(r.Context(), access, r.Form.Get("refresh_token")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("logged out")
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
