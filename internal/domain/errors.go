package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Every field-specific validation error wraps it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. When err is nil
// the error wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors is the full set of problems found while validating an entity.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Unwrap exposes every field error to errors.Is and errors.As.
func (ve ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(ve))
	for _, e := range ve {
		errs = append(errs, e)
	}
	return errs
}

// Fields groups messages by field name, preserving order within a field.
func (ve ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string, len(ve))
	for _, e := range ve {
		fields[e.Field] = append(fields[e.Field], e.Message)
	}
	return fields
}

// errOrNil returns nil for an empty set so callers can write `return errs.errOrNil()`.
func (ve ValidationErrors) errOrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}
