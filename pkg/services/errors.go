// Package services provides the application layer tying validation,
// promotion, storage and events together.
package services

import (
	"errors"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
	ErrRuleNil            = errors.New("rule cannot be nil")
	ErrInvalidRuleVariant = errors.New("rule payload does not match its type")

	// Business logic conflicts (409 Conflict).
	ErrTransitionBlocked = errors.New("lifecycle transition blocked")
)

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrRuleNil) ||
		errors.Is(err, ErrInvalidRuleVariant)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrTransitionBlocked)
}
