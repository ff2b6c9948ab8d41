package consolesdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Flexible scalars
// ============================================================================

// ID is an identifier the backend may send as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("consolesdk: id is neither string nor number: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp accepts RFC 3339 and the naive ISO 8601 forms Python's isoformat
// produces. Naive values are taken as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)

	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v.UTC()
		return nil
	}
	for _, layout := range naiveLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = v
			return nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	return fmt.Errorf("consolesdk: unrecognised timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ============================================================================
// Authentication
// ============================================================================

// LoginRequest is the body of POST /api/auth/login-json.
type LoginRequest struct {
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// LoginResponse is returned by POST /api/auth/login-json.
type LoginResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	UserID      ID     `json:"user_id"`
	Email       string `json:"email"`
	Message     string `json:"message,omitempty"`
}

// UserInfo is returned by GET /api/user-info.
type UserInfo struct {
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	UserID      ID     `json:"user_id"`
	Email       string `json:"email"`
}

// ============================================================================
// Role management
// ============================================================================

// DatabaseRights is the access triple for one database.
type DatabaseRights struct {
	Read    bool `json:"read"`
	Write   bool `json:"write"`
	Execute bool `json:"execute"`
}

// TemporaryGrant is a time-boxed page grant.
type TemporaryGrant struct {
	GrantedUntil Timestamp `json:"granted_until"`
}

// UserPermissions is the permission record of one user in one company.
type UserPermissions struct {
	Username            string                    `json:"username,omitempty"`
	PagePermissions     map[string]bool           `json:"page_permissions"`
	DatabasePermissions map[string]DatabaseRights `json:"database_permissions"`
	TemporaryAccess     map[string]TemporaryGrant `json:"temporary_access"`
}

type userPermissionsEnvelope struct {
	User *UserPermissions `json:"user"`
}

type databasesEnvelope struct {
	Databases []json.RawMessage `json:"databases"`
}

// AccessRequest is the body of POST /api/role-management/access-requests.
type AccessRequest struct {
	Username      string `json:"username"`
	CompanyName   string `json:"company_name"`
	RequestedPage string `json:"requested_page"`
	PageName      string `json:"page_name"`
	Reason        string `json:"reason"`
	RequestType   string `json:"request_type"`
}
