package authsdk

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned by POST /v1/auth/token.
type TokenResponse struct {
	// GrantType is always "Bearer".
	GrantType string `json:"grant_type" example:"Bearer"`

	// AccessToken is the HS256 JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is opaque and single use. Each refresh returns a new one.
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer" (RFC 6750)
	TokenType string `json:"token_type" example:"Bearer"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int64 `json:"expires_in" example:"1800"`
}

// IntrospectionResponse is a trimmed RFC 7662 introspection response.
// When a token is inactive only Active (false) and Reason are set.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	// Reason says why the token is inactive, e.g. "token_expired".
	Reason string `json:"reason,omitempty"`

	Sub      string `json:"sub,omitempty"`
	Jti      string `json:"jti,omitempty"`
	Iat      int64  `json:"iat,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
}

// MeResponse is returned by GET /v1/users/me. Anonymous callers get ID 0
// and Authenticated false.
type MeResponse struct {
	ID            int64    `json:"id"`
	Authenticated bool     `json:"authenticated"`
	RealID        string   `json:"real_id,omitempty"`
	Nickname      string   `json:"nickname,omitempty"`
	Name          string   `json:"name,omitempty"`
	Role          string   `json:"role,omitempty"`
	Authorities   []string `json:"authorities,omitempty"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database is the user database.
	Database string `json:"database"`

	// TokenStore is the refresh-token and revocation store.
	TokenStore string `json:"token_store"`
}
