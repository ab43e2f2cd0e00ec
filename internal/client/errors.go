package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for API failure classes. Callers branch with errors.Is;
// the wrapped message carries the server's explanation. A FORBIDDEN reply
// is always surfaced as ErrForbidden, never collapsed into a generic
// failure, so callers can tell "not allowed" from "broken".
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// apiError wraps a sentinel with the server-provided detail.
func apiError(sentinel error, message string) error {
	if message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

func sentinelForStatus(status int) error {
	switch status {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 400:
		return ErrValidation
	case 409:
		return ErrConflict
	default:
		return ErrServer
	}
}
