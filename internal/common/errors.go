// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrOwnership is returned when an upsert targets an id that belongs to
	// another tenant.
	ErrOwnership = errors.New("record belongs to another account")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrValidation         = errors.New("validation error")

	// ErrSyncInProgress is returned when a sync cycle is requested while
	// another one is still running on the same replica.
	ErrSyncInProgress = errors.New("sync already in progress")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// FieldError pinpoints one offending field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a whole request. It lists every offending field.
type ValidationError struct {
	Details []FieldError
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(details ...FieldError) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// EntitlementError is returned when the caller's plan does not allow an
// action. Message is meant to be shown to the user as is.
type EntitlementError struct {
	Message string
}

func (e *EntitlementError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrForbidden) true.
func (e *EntitlementError) Is(target error) bool {
	return target == ErrForbidden
}
