package domain

import "time"

// Session is one gateway login. Requires2FA is fixed per login from the
// identity's enrollment; MFAVerified flips once a code is accepted.
type Session struct {
	ID           string
	Identity     Identity
	Key          IdentityKey
	BackendToken string
	Requires2FA  bool
	MFAVerified  bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// FullyAuthenticated reports whether the session may reach protected data.
func (s Session) FullyAuthenticated() bool {
	return !s.Requires2FA || s.MFAVerified
}

// Scope is the tenant-qualified key of the session's identity.
func (s Session) Scope() ScopedKey {
	return Scope(s.Identity.Tenant, s.Key)
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
