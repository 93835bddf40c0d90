package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// TokenHandler serves POST /v1/auth/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework. The
// only grant is refresh_token; sign-in happens elsewhere.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Token Endpoint
//	@Description	Rotates a refresh token. The presented refresh token is spent and a new access and refresh token pair is returned.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(refresh_token)
//	@Param			refresh_token	formData	string					true	"Refresh token"
//	@Success		200				{object}	authsdk.TokenResponse	"grant_type, access_token, refresh_token, token_type, expires_in"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		503				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	if r.Form.Get("grant_type") != "refresh_token" {
		authsdk.ErrUnsupportedGrantType.WriteError(w)
		return
	}

	refresh := strings.TrimSpace(r.Form.Get("refresh_token"))
	if refresh == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), refresh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := authsdk.TokenResponse{
		GrantType:    pair.GrantType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresInSeconds(),
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}
