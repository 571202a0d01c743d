// Package shared contains canonical type definitions shared across sprout.
package shared //nolint:revive // internal shared package is intentional

import (
	"errors"
	"net/http"
)

// Semantic errors for embedding and vector index operations.
var (
	// ErrAuthentication indicates a missing or rejected API key.
	ErrAuthentication = errors.New("sprout: authentication failed")

	// ErrInvalidInput indicates the remote service rejected the request payload.
	ErrInvalidInput = errors.New("sprout: invalid input")

	// ErrConflict indicates the resource already exists.
	ErrConflict = errors.New("sprout: conflict")

	// ErrNotFound indicates the requested index or vector does not exist.
	ErrNotFound = errors.New("sprout: not found")

	// ErrRemoteService indicates a network, rate-limit, or server-side failure.
	ErrRemoteService = errors.New("sprout: remote service error")

	// ErrInvalidArgument indicates a caller supplied an unrecognised value.
	ErrInvalidArgument = errors.New("sprout: invalid argument")
)

// ErrorForStatus maps an HTTP status code onto the error taxonomy.
func ErrorForStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthentication
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrRemoteService
	}
}
