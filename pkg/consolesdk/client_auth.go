package consolesdk

import (
	"context"
	"errors"
	"net/http"
)

// ErrMissingToken means the backend reported success without a token.
var ErrMissingToken = errors.New("consolesdk: login succeeded without a token")

// LoginJSON authenticates with company, username and password. A rejected
// login is returned as an *APIError with code invalid_credentials whether the
// backend answered 401 or 200 with success=false.
func (c *SDKClient) LoginJSON(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login-json", req, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			apiErr.Code = ErrorCodeInvalidCredentials
		}
		return nil, err
	}

	if !out.Success {
		return nil, &APIError{
			StatusCode: http.StatusUnauthorized,
			Code:       ErrorCodeInvalidCredentials,
			Message:    out.Message,
		}
	}
	if out.Token == "" {
		return nil, ErrMissingToken
	}

	return &out, nil
}

// Logout ends the backend session.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

// GetUserInfo probes the session and returns who it belongs to.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/user-info", nil)
	if err != nil {
		return nil, err
	}

	var out UserInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
