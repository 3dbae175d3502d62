package api

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for any non-2xx response. The raw body is kept
// (truncated) so callers can surface server-provided messages.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// IsUnauthorized reports whether err is an HTTP 401.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is an HTTP 403.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}

// IsAuthFailure reports whether err is a 401 or 403, the two statuses the
// client treats as "session no longer valid".
func IsAuthFailure(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err)
}

// IsNetwork reports whether err is a transport-level failure: no HTTP status
// was received at all (connection refused, DNS failure, timeout).
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	return !errors.As(err, &se)
}
