package services

import (
	"errors"
	"fmt"
)

// Error kinds returned by the lifecycle and inbox services. Callers match
// them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
)

// LifecycleError carries a user facing message alongside its kind.
// Remaining is only set for ErrCapacityExceeded.
type LifecycleError struct {
	Kind      error
	Message   string
	Remaining int
}

func (e *LifecycleError) Error() string {
	return e.Message
}

func (e *LifecycleError) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *LifecycleError {
	return &LifecycleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func capacityError(remaining int) *LifecycleError {
	return &LifecycleError{
		Kind:      ErrCapacityExceeded,
		Message:   fmt.Sprintf("Not enough spots available. Only %d spots remaining.", remaining),
		Remaining: remaining,
	}
}
