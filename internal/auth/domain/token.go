package domain

import "time"

// GrantTypeBearer is the only grant type we hand out.
const GrantTypeBearer = "Bearer"

// TokenPair represents what the token endpoint returns: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	GrantType    string        `json:"grant_type"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"-"` // access token lifetime
}

// ExpiresInSeconds is the access token lifetime as it goes over the wire.
func (p TokenPair) ExpiresInSeconds() int64 { return int64(p.ExpiresIn / time.Second) }
