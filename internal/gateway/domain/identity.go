package domain

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoIdentity is returned when a login response carries nothing usable as a key.
var ErrNoIdentity = errors.New("domain: login response has no user id, email or username")

// Identity is the user as reported by the backend at login.
type Identity struct {
	UserID   string // backend user_id, may be empty
	Username string
	Email    string
	Tenant   string // company_name the session is bound to
}

// IdentityKey is the one key every per-identity record (enrollment, lockout,
// permission cache) is stored under. It is resolved once at login and carried
// on the session; nothing recomputes it from a partial identity later.
type IdentityKey string

func (k IdentityKey) String() string { return string(k) }

// Numeric reports whether the key is a backend user id rather than a
// username or email, which decides whether the by-username permission lookup
// is worth trying.
func (k IdentityKey) Numeric() bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveIdentityKey picks the canonical key for id: user id, then email
// (lower-cased), then username.
func ResolveIdentityKey(id Identity) (IdentityKey, error) {
	if v := strings.TrimSpace(id.UserID); v != "" {
		return IdentityKey(v), nil
	}
	if v := strings.TrimSpace(id.Email); v != "" {
		return IdentityKey(strings.ToLower(v)), nil
	}
	if v := strings.TrimSpace(id.Username); v != "" {
		return IdentityKey(v), nil
	}
	return "", ErrNoIdentity
}

// ScopedKey is an IdentityKey within its tenant. The backend numbers users per
// company, so user 1 of one tenant and user 1 of another are different people:
// enrollment, lockout, pending setup and cached permissions are all kept per
// ScopedKey, never per bare IdentityKey.
type ScopedKey struct {
	Tenant string
	Key    IdentityKey
}

// Scope qualifies key with tenant.
func Scope(tenant string, key IdentityKey) ScopedKey {
	return ScopedKey{Tenant: strings.TrimSpace(tenant), Key: key}
}

// String is the flat form used for client-state keys. The tenant is escaped so
// it can never contain the separator.
func (k ScopedKey) String() string {
	return url.PathEscape(k.Tenant) + "/" + k.Key.String()
}

// AccountLabel is the name shown in authenticator apps.
func (id Identity) AccountLabel() string {
	if id.Email != "" {
		return id.Email
	}
	return id.Username
}
