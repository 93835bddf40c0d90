package jwtx

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest secret we accept. HS256 wants at least
// 256 bits of key material.
const MinSecretLength = 32

const signingKeyInfo = "tokenauth/access-token/hs256"

var ErrWeakSecret = errors.New("jwtx: signing secret must be at least 32 bytes")

// SigningKey is the symmetric HS256 key shared by the signer and the
// verifier. It is derived once at startup and never changes afterwards, so
// a single instance can be used by every request goroutine.
type SigningKey struct {
	material []byte
}

// NewSigningKey derives the signing key from the configured secret using
// HKDF-SHA256.
func NewSigningKey(secret string) (*SigningKey, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo))
	material := make([]byte, sha256.Size)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("jwtx: derive signing key: %w", err)
	}

	return &SigningKey{material: material}, nil
}

// MustSigningKey is like NewSigningKey but panics on error. Only meant for
// tests and hard-coded fixtures.
func MustSigningKey(secret string) *SigningKey {
	k, err := NewSigningKey(secret)
	if err != nil {
		panic(err)
	}
	return k
}

func (k *SigningKey) bytes() []byte { return k.material }
