package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ifrsconsole/console/internal/gateway/metrics"
	"github.com/ifrsconsole/console/pkg/consolesdk"
)

// Backend is the accounting backend as the services see it. Every call except
// Login runs as the user owning token.
type Backend interface {
	Login(ctx context.Context, req consolesdk.LoginRequest) (*consolesdk.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	UserInfo(ctx context.Context, token string) (*consolesdk.UserInfo, error)
	UserPermissions(ctx context.Context, token, id, company string) (*consolesdk.UserPermissions, error)
	FindUserPermissions(ctx context.Context, token, company, username string) (*consolesdk.UserPermissions, error)
	Databases(ctx context.Context, token, company string) ([]json.RawMessage, error)
	SubmitAccessRequest(ctx context.Context, token string, req consolesdk.AccessRequest) error
}

// SDKBackend implements Backend over consolesdk and times every call.
type SDKBackend struct {
	Client *consolesdk.SDKClient
}

func observe(op string, start time.Time) {
	metrics.BackendRequestDurationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (b *SDKBackend) Login(ctx context.Context, req consolesdk.LoginRequest) (*consolesdk.LoginResponse, error) {
	defer observe("login", time.Now())
	return b.Client.LoginJSON(ctx, req)
}

func (b *SDKBackend) Logout(ctx context.Context, token string) error {
	defer observe("logout", time.Now())
	return b.Client.NewSession(token).Logout(ctx)
}

func (b *SDKBackend) UserInfo(ctx context.Context, token string) (*consolesdk.UserInfo, error) {
	defer observe("user_info", time.Now())
	return b.Client.NewSession(token).GetUserInfo(ctx)
}

func (b *SDKBackend) UserPermissions(ctx context.Context, token, id, company string) (*consolesdk.UserPermissions, error) {
	defer observe("user_permissions", time.Now())
	return b.Client.NewSession(token).GetUserPermissions(ctx, id, company)
}

func (b *SDKBackend) FindUserPermissions(ctx context.Context, token, company, username string) (*consolesdk.UserPermissions, error) {
	defer observe("find_user_permissions", time.Now())
	return b.Client.NewSession(token).FindUserPermissions(ctx, company, username)
}

func (b *SDKBackend) Databases(ctx context.Context, token, company string) ([]json.RawMessage, error) {
	defer observe("databases", time.Now())
	return b.Client.NewSession(token).ListDatabases(ctx, company)
}

func (b *SDKBackend) SubmitAccessRequest(ctx context.Context, token string, req consolesdk.AccessRequest) error {
	defer observe("access_request", time.Now())
	return b.Client.NewSession(token).SubmitAccessRequest(ctx, req)
}
