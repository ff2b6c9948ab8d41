package domain

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
	"time"
)

// DatabasePermission is the access triple for one database.
type DatabasePermission struct {
	Read    bool `json:"read"`
	Write   bool `json:"write"`
	Execute bool `json:"execute"`
}

// Any reports whether any right is granted.
func (p DatabasePermission) Any() bool {
	return p.Read || p.Write || p.Execute
}

// TemporaryGrant extends page access until GrantedUntil, inclusive.
type TemporaryGrant struct {
	GrantedUntil time.Time `json:"granted_until"`
}

// PermissionRecord is a read replica of what the backend says one identity may
// do within one tenant. It is never edited locally.
type PermissionRecord struct {
	PagePermissions     map[string]bool               `json:"page_permissions"`
	DatabasePermissions map[string]DatabasePermission `json:"database_permissions"`
	TemporaryAccess     map[string]TemporaryGrant     `json:"temporary_access"`
}

// NormalizePath gives page paths a single leading slash.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	return "/" + strings.TrimLeft(path, "/")
}

// Database is one entry of the backend catalogue. The backend sends either a
// bare name or an object with a "name" field; object fields other than the
// name are passed through untouched.
type Database struct {
	Name  string
	Extra map[string]any
}

var errDatabaseName = errors.New("domain: database entry has no name")

func (d *Database) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*d = Database{Name: name}
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	name, _ = obj["name"].(string)
	if name == "" {
		return errDatabaseName
	}
	delete(obj, "name")
	*d = Database{Name: name, Extra: obj}
	return nil
}

func (d Database) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+1)
	maps.Copy(out, d.Extra)
	out["name"] = d.Name
	return json.Marshal(out)
}

// AccessRequest asks an administrator for access to a page.
type AccessRequest struct {
	RequestedPage string `json:"requested_page"`
	PageName      string `json:"page_name"`
	Reason        string `json:"reason"`
	RequestType   string `json:"request_type"`
}
