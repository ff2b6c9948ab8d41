package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid company, username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidRequest     = errors.New("invalid request")

	// ErrSecondFactorRequired guards enrollment changes: a session that still
	// owes its second factor may not set up or remove one.
	ErrSecondFactorRequired = errors.New("second factor verification required")

	// ErrStaleLoad means a newer permission load for the same identity and
	// tenant superseded this one, or the entry was forgotten mid-flight.
	ErrStaleLoad = errors.New("permission load superseded")
)
