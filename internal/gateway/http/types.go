package http

import (
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
)

// SessionInfo describes the caller's gateway session.
type SessionInfo struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id,omitempty"`
	Username           string    `json:"username"`
	Email              string    `json:"email,omitempty"`
	CompanyName        string    `json:"company_name"`
	Requires2FA        bool      `json:"requires_2fa"`
	MFAVerified        bool      `json:"mfa_verified"`
	FullyAuthenticated bool      `json:"fully_authenticated"`
	ExpiresAt          time.Time `json:"expires_at"`
	BackendOK          *bool     `json:"backend_ok,omitempty"`
}

func sessionInfo(s domain.Session) SessionInfo {
	return SessionInfo{
		ID:                 s.ID,
		UserID:             s.Identity.UserID,
		Username:           s.Identity.Username,
		Email:              s.Identity.Email,
		CompanyName:        s.Identity.Tenant,
		Requires2FA:        s.Requires2FA,
		MFAVerified:        s.MFAVerified,
		FullyAuthenticated: s.FullyAuthenticated(),
		ExpiresAt:          s.ExpiresAt,
	}
}

// LoginResponse carries the session token. The same token is also set as the
// console_session cookie.
type LoginResponse struct {
	Token   string      `json:"token"`
	Session SessionInfo `json:"session"`
}

// CodeRequest carries a TOTP or backup code.
type CodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// VerifyResponse is the outcome of a code check. A wrong code is not an
// error.
type VerifyResponse struct {
	Verified       bool `json:"verified"`
	FailedAttempts int  `json:"failed_attempts,omitempty"`
}

// LockedResponse is returned with 423 while verification is locked.
type LockedResponse struct {
	Error            string    `json:"error" example:"locked"`
	ErrorDescription string    `json:"error_description"`
	RemainingSeconds int64     `json:"remaining_seconds" example:"840"`
	LockedUntil      time.Time `json:"locked_until"`
}

// PermissionsResponse is the caller's permission record. Loaded is false when
// the backend could not be reached, in which case every check denies.
type PermissionsResponse struct {
	Loaded      bool                     `json:"loaded"`
	IsAdmin     bool                     `json:"is_admin"`
	Permissions *domain.PermissionRecord `json:"permissions"`
}

// DatabasesResponse lists the databases the caller has any right on.
type DatabasesResponse struct {
	Databases []domain.Database `json:"databases"`
}

// DatabasePermissionResponse is the rights triple on one database.
type DatabasePermissionResponse struct {
	Name string `json:"name"`
	domain.DatabasePermission
}

// AccessRequestResponse acknowledges an access request.
type AccessRequestResponse struct {
	Submitted bool `json:"submitted"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists readiness of dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
