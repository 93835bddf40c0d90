package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// IntrospectHandler serves POST /v1/auth/introspect, loosely following
// RFC 7662. Unlike the RFC it tells the caller why a token is inactive.
type IntrospectHandler struct {
	Validator *service.TokenValidator
}

// ServeHTTP godoc
//
//	@Summary		Token Introspection Endpoint
//	@Description	Reports whether an access token is usable right now and returns its claims. Requires the ADMIN authority.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	formData	string							true	"The access token to introspect"
//	@Success		200		{object}	authsdk.IntrospectionResponse	"Token introspection result"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		503		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Header			200		{string}	Cache-Control					"no-store"
//	@Header			200		{string}	Pragma							"no-cache"
//	@Router			/v1/auth/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	claims, err := h.Validator.Verify(r.Context(), token)
	switch {
	case errors.Is(err, service.ErrStoreUnavailable):
		// Can't say either way; don't report the token as inactive.
		writeServiceError(w, r, err)
		return
	case err != nil:
		httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{
			Active: false,
			Reason: service.Reason(err),
		})
		return
	}

	response := authsdk.IntrospectionResponse{
		Active:   true,
		Sub:      claims.Subject,
		Jti:      claims.ID,
		Nickname: claims.Nickname,
		Role:     claims.Role,
		Name:     claims.Name,
	}
	if claims.IssuedAt != nil {
		response.Iat = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		response.Exp = claims.ExpiresAt.Unix()
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}
