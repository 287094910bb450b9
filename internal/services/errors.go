package services

import (
	"errors"
	"fmt"

	"github.com/streakedin/streakedin/internal/store"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError represents a unique constraint or duplicate resource error
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// NotFoundError represents a missing or foreign record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) NotFoundError {
	return NotFoundError{Resource: resource, ID: id}
}

func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// UnauthorizedError is returned for bad credentials.
type UnauthorizedError struct{ Message string }

func (e UnauthorizedError) Error() string { return e.Message }

func IsUnauthorizedError(err error) bool {
	var ue UnauthorizedError
	return errors.As(err, &ue)
}

// translate maps store sentinels onto service errors.
func translate(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NewNotFoundError(resource, id)
	case errors.Is(err, store.ErrConflict):
		return NewConflictError(resource, "already exists")
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}
