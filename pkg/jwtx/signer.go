package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer implements the Signer interface using HMAC SHA-256.
type HS256Signer struct {
	key *SigningKey
}

// NewSignerHS256 creates an HS256 signer over the shared signing key.
func NewSignerHS256(key *SigningKey) *HS256Signer {
	return &HS256Signer{key: key}
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key.bytes())
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if s.key == nil || len(s.key.bytes()) == 0 {
		return errors.New("jwtx: nil HMAC key")
	}
	return nil
}
