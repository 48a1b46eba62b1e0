package client

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/parkinglot/internal/domain"
)

// AuthExpiredError is returned for any 401 response.
type AuthExpiredError struct {
	Message string
}

func (e *AuthExpiredError) Error() string {
	if e.Message == "" {
		return "session expired"
	}
	return "session expired: " + e.Message
}

func (e *AuthExpiredError) Unwrap() error { return domain.ErrUnauthorized }

// NetworkError wraps transport failures where no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response carrying {"error": "..."}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the domain sentinels so callers can use
// errors.Is the same way on both sides of the wire.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusConflict:
		if e.Message == domain.ErrNoCapacity.Error() {
			return domain.ErrNoCapacity
		}
		return domain.ErrConflict
	}
	return nil
}
