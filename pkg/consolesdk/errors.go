package consolesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeBackendError       = "backend_error"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("backend %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// errorBody covers the shapes the backend uses for errors: FastAPI's
// {"detail": ...}, OAuth-style {"error", "error_description"} and
// {"message": ...}.
type errorBody struct {
	Detail           json.RawMessage `json:"detail"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: codeForStatus(resp.StatusCode)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(truncate(string(body), 200))
		return apiErr
	}

	if eb.Error != "" {
		apiErr.Code = eb.Error
	}

	switch {
	case eb.ErrorDescription != "":
		apiErr.Message = eb.ErrorDescription
	case len(eb.Detail) > 0:
		apiErr.Message = detailMessage(eb.Detail)
	case eb.Message != "":
		apiErr.Message = eb.Message
	}

	return apiErr
}

// detailMessage flattens a FastAPI detail, which is a string or a list of
// validation errors with "msg" fields.
func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(raw)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case http.StatusForbidden:
		return ErrorCodeForbidden
	case http.StatusNotFound:
		return ErrorCodeNotFound
	default:
		return ErrorCodeBackendError
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
