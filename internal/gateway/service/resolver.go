package service

import (
	"time"

	"github.com/ifrsconsole/console/internal/gateway/domain"
)

// RoleManagementPath is the page whose grant makes a user an administrator.
const RoleManagementPath = "/rolemanagement"

// Resolver answers access questions against one loaded permission record at
// one instant. A nil record denies everything except the reserved admin.
type Resolver struct {
	record        *domain.PermissionRecord
	username      string
	adminUsername string
	now           time.Time
}

func NewResolver(record *domain.PermissionRecord, username, adminUsername string, now time.Time) Resolver {
	return Resolver{
		record:        record,
		username:      username,
		adminUsername: adminUsername,
		now:           now,
	}
}

// Record returns the record the resolver evaluates, or nil.
func (r Resolver) Record() *domain.PermissionRecord { return r.record }

func (r Resolver) reservedAdmin() bool {
	return r.adminUsername != "" && r.username == r.adminUsername
}

// HasPageAccess reports whether path may be viewed. A standing grant and an
// unexpired temporary grant are alternatives: a temporary entry only ever adds
// access, it never takes a standing grant away.
func (r Resolver) HasPageAccess(path string) bool {
	if r.reservedAdmin() {
		return true
	}
	if r.record == nil {
		return false
	}

	path = domain.NormalizePath(path)
	if r.record.PagePermissions[path] {
		return true
	}
	if g, ok := r.record.TemporaryAccess[path]; ok {
		return !r.now.After(g.GrantedUntil)
	}
	return false
}

// HasDatabaseAccess reports whether any right is granted on name.
func (r Resolver) HasDatabaseAccess(name string) bool {
	return r.DatabasePermissions(name).Any()
}

// DatabasePermissions returns the rights on name, all false when unknown.
func (r Resolver) DatabasePermissions(name string) domain.DatabasePermission {
	if r.record == nil {
		return domain.DatabasePermission{}
	}
	return r.record.DatabasePermissions[name]
}

// IsAdmin is the single app-wide bypass.
func (r Resolver) IsAdmin() bool {
	return r.reservedAdmin() || r.HasPageAccess(RoleManagementPath)
}

// CanView is the gate every protected view goes through.
func (r Resolver) CanView(path string) bool {
	return r.IsAdmin() || r.HasPageAccess(path)
}

// FilterDatabases keeps the entries with at least one right. Without a record
// the result is empty.
func (r Resolver) FilterDatabases(list []domain.Database) []domain.Database {
	out := make([]domain.Database, 0, len(list))
	if r.record == nil {
		return out
	}
	for _, db := range list {
		if r.HasDatabaseAccess(db.Name) {
			out = append(out, db)
		}
	}
	return out
}
