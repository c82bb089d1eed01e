package client

import (
	"net/http"

	"github.com/dom/tickify/internal/domain"
)

// APIError is a non-2xx response from the server. It unwraps to the domain
// error class of its status, so callers can use errors.Is against
// domain.ErrNotFound and friends.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() []error {
	switch e.Status {
	case http.StatusBadRequest:
		return []error{domain.ErrBadRequest, domain.ErrValidation}
	case http.StatusUnauthorized:
		return []error{domain.ErrUnauthorized}
	case http.StatusForbidden:
		return []error{domain.ErrForbidden}
	case http.StatusNotFound:
		return []error{domain.ErrNotFound}
	case http.StatusConflict:
		return []error{domain.ErrConflict}
	}
	return nil
}
