package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// IssueHandler serves POST /v1/auth/issue. It must sit behind Authenticate
// and an ADMIN authority check: the caller vouches that the subject has
// already signed in.
type IssueHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Issue Token Pair
//	@Description	Issues a fresh access and refresh token pair for an active user. Intended for a trusted sign-in front end holding an ADMIN token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			sub	formData	string					true	"RealID of the user"
//	@Success		200	{object}	authsdk.TokenResponse	"grant_type, access_token, refresh_token, token_type, expires_in"
//	@Failure		400	{object}	authsdk.ErrorResponse	"Unknown or deleted user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not an admin"
//	@Failure		503	{object}	authsdk.ErrorResponse	"Token store unavailable"
//	@Router			/v1/auth/issue [post].
func (h *IssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	sub := strings.TrimSpace(r.Form.Get("sub"))
	if sub == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.IssueFor(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrPrincipalNotFound):
		invalidRequest("unknown or deleted user").WriteError(w)
		return
	case errors.Is(err, service.ErrInvalidRole):
		slogx.FromContext(r.Context()).Error("stored user has an unknown role", "target", sub, "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	case err != nil:
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("issued token pair", "target", sub)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		GrantType:    pair.GrantType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresInSeconds(),
	})
}
