package consolesdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// ErrNoPermissionRecord means the backend answered without a "user" object.
var ErrNoPermissionRecord = errors.New("consolesdk: response has no user permission record")

// GetUserPermissions fetches the record of user id within company.
func (s *Session) GetUserPermissions(ctx context.Context, id, company string) (*UserPermissions, error) {
	q := url.Values{"company_name": {company}}
	return s.fetchPermissions(ctx, "/api/role-management/users/"+url.PathEscape(id)+"?"+q.Encode())
}

// FindUserPermissions fetches the record of username within company.
func (s *Session) FindUserPermissions(ctx context.Context, company, username string) (*UserPermissions, error) {
	q := url.Values{"company_name": {company}, "username": {username}}
	return s.fetchPermissions(ctx, "/api/role-management/users?"+q.Encode())
}

func (s *Session) fetchPermissions(ctx context.Context, path string) (*UserPermissions, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env userPermissionsEnvelope
	if err := decodeJSON(resp, &env, http.StatusOK); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, ErrNoPermissionRecord
	}
	return env.User, nil
}

// ListDatabases returns the raw database catalogue of company. Entries are
// either bare names or objects with a "name" field.
func (s *Session) ListDatabases(ctx context.Context, company string) ([]json.RawMessage, error) {
	q := url.Values{"company_name": {company}}
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/role-management/databases?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var env databasesEnvelope
	if err := decodeJSON(resp, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return env.Databases, nil
}

// SubmitAccessRequest files a request for page access with the administrators.
func (s *Session) SubmitAccessRequest(ctx context.Context, req AccessRequest) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/role-management/access-requests", req)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
