package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Anything a service returns that wraps none of these is an
// internal failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
)

// Account errors
var (
	ErrAccountExists          = fmt.Errorf("%w: an account with this email already exists", ErrConflict)
	ErrAccountNameTaken       = fmt.Errorf("%w: an account with this name already exists", ErrConflict)
	ErrInvalidCredentials     = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrAccountNotFound        = fmt.Errorf("%w: account not found", ErrNotFound)
	ErrEmailMismatch          = fmt.Errorf("%w: account belongs to a different email", ErrForbidden)
	ErrPrimaryAccountDeletion = fmt.Errorf("%w: the primary account cannot be deleted", ErrBadRequest)
	ErrUnknownCreator         = fmt.Errorf("%w: creator account does not exist", ErrBadRequest)
	ErrForeignCreator         = fmt.Errorf("%w: items can only be created for your own account", ErrForbidden)
	ErrPrimaryAccountRename   = NewValidationError("accountName", "The primary account cannot be given a name")
	ErrAccountNameRequired    = NewValidationError("accountName", "Account name is required")
)

// Checklist errors
var (
	ErrItemNotFound = fmt.Errorf("%w: checklist item not found", ErrNotFound)
	ErrInvalidID    = fmt.Errorf("%w: invalid id format", ErrBadRequest)
	ErrNotOwner     = fmt.Errorf("%w: checklist item belongs to another account", ErrForbidden)
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Message returns the human readable part of err, without the taxonomy prefix.
func Message(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrConflict, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrBadRequest} {
		prefix := sentinel.Error() + ": "
		if !errors.Is(err, sentinel) {
			continue
		}
		if i := strings.LastIndex(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
	}
	return msg
}
