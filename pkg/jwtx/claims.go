package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrMissingSID  = errors.New("jwtx: missing sid")
)

// Claims identify a gateway session. The token is only a handle: the session
// row it points to holds the identity and the 2FA state.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID
	SID string `json:"sid"`

	// Tenant (company) the session was opened against
	Tenant string `json:"tenant,omitempty"`

	// Username as returned by the backend at login
	Username string `json:"username,omitempty"`

	// Authentication Methods Reference ["pwd"] or ["pwd","otp"]
	AMR []string `json:"amr,omitempty"`
}

// NewSessionClaims builds claims for a session opened at now.
func NewSessionClaims(subject, sid, tenant, username, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sid,
		Tenant:   tenant,
		Username: username,
		AMR:      []string{"pwd"},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateAt checks exp and nbf against now, allowing leeway for clock skew.
func (c *Claims) ValidateAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	if c.SID == "" {
		return ErrMissingSID
	}
	return nil
}
