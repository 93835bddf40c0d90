package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	// Verify checks signature, algorithm and expiry.
	Verify(token string) (Claims, error)

	// ParseClaims checks signature and algorithm only. Expired tokens still
	// come back with their claims so callers can see who they belonged to.
	ParseClaims(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates JWTs signed using HS256.
type HS256Verifier struct {
	key *SigningKey
	now func() time.Time
}

// NewVerifierHS256 creates a verifier over the shared signing key. A nil now
// falls back to time.Now.
func NewVerifierHS256(key *SigningKey, now func() time.Time) *HS256Verifier {
	if now == nil {
		now = time.Now
	}
	return &HS256Verifier{key: key, now: now}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	return v.parse(parser, tokenStr)
}

// ParseClaims returns the claims of a correctly signed token whether or not
// it has expired. Signature and structure problems still fail.
func (v *HS256Verifier) ParseClaims(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	return v.parse(parser, tokenStr)
}

func (v *HS256Verifier) parse(parser *jwt.Parser, tokenStr string) (Claims, error) {
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, v.keyFunc)
	if err != nil {
		return Claims{}, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	return *claims, nil
}

func (v *HS256Verifier) keyFunc(t *jwt.Token) (any, error) {
	// Pin HS256 so "none" or an RSA header can't pick the verification path.
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrAlgMismatch
	}
	return v.key.bytes(), nil
}

// classify maps golang-jwt errors onto ours. The library error is kept as
// text only so callers can't start depending on its types.
func classify(err error) error {
	var kind error
	switch {
	case errors.Is(err, ErrAlgMismatch):
		kind = ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		kind = ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		kind = ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		kind = ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenInvalidClaims):
		kind = ErrInvalidClaim
	default:
		kind = ErrMalformed
	}
	return fmt.Errorf("%w: %s", kind, err.Error())
}
