package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the token service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RefreshGrant exchanges a refresh token for a new pair. The refresh token
// is spent whether or not the caller receives the response.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/token", "", form)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateWithRefreshToken creates a session from a refresh token.
func (c *Client) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// NewSessionFromTokens wraps a pair obtained elsewhere, e.g. at sign-in.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// Me returns the caller as the server sees them. An empty accessToken asks
// as an anonymous caller.
func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/users/me", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes accessToken and, if given, deletes refreshToken.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	form := url.Values{}
	if refreshToken != "" {
		form.Set("refresh_token", refreshToken)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/logout", accessToken, form)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Issue asks for a fresh pair on behalf of the user with RealID sub. The
// caller's own accessToken must carry the ADMIN authority.
func (c *Client) Issue(ctx context.Context, accessToken, sub string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/issue", accessToken, url.Values{"sub": {sub}})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Introspect asks about token. The caller's own accessToken must carry the
// ADMIN authority.
func (c *Client) Introspect(ctx context.Context, accessToken, token string) (*IntrospectionResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/introspect", accessToken, url.Values{"token": {token}})
	if err != nil {
		return nil, err
	}

	var out IntrospectionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness calls /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls /readyz. A 503 comes back as an *OAuth2Error.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
