package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the shortest HS256 key accepted.
const MinKeySize = 32

// HS256 signs and verifies session tokens with a single shared key. Sessions
// are only ever read back by the gateway that issued them, so there is no
// public key to publish.
type HS256 struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewHS256 returns a signer/verifier for key. now defaults to time.Now.
func NewHS256(key []byte, issuer string, now func() time.Time) (*HS256, error) {
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("jwtx: HS256 key must be at least %d bytes, got %d", MinKeySize, len(key))
	}
	if now == nil {
		now = time.Now
	}
	return &HS256{key: key, issuer: issuer, leeway: 30 * time.Second, now: now}, nil
}

func (h *HS256) Issuer() string { return h.issuer }

// Sign serialises claims into a compact JWT.
func (h *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.key)
}

// Verify checks the signature, issuer and validity window of raw.
func (h *HS256) Verify(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return Claims{}, ErrIssuer
	}
	if err := claims.ValidateAt(h.now(), h.leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
