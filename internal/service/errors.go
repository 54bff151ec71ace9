package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/store"
)

// Service sentinel errors. Callers check them with errors.Is; the API layer
// maps each to a status code.
var (
	// ErrGramNotFound indicates the requested gram does not exist. Maps to 404.
	ErrGramNotFound = errors.New("gram not found")

	// ErrUserNotFound indicates the requested user does not exist. Maps to 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a registration used an email that is already
	// registered. Maps to 409.
	ErrEmailTaken = errors.New("email already registered")

	// ErrOwnerMissing indicates a gram referenced a user that does not exist.
	// Maps to 422.
	ErrOwnerMissing = errors.New("gram owner does not exist")
)

// ServiceError wraps an unexpected failure with the service and operation
// it came from.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError translates err for callers of a service operation.
// Store sentinels become service sentinels, validation errors pass through
// unchanged so their field details survive, and anything else is wrapped in
// a ServiceError. A nil err yields nil.
func NewServiceError(service, operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrGramNotFound), errors.Is(err, store.ErrGramNotFound):
		return ErrGramNotFound
	case errors.Is(err, ErrUserNotFound), errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %v", ErrOwnerMissing, err)
	case errors.Is(err, domain.ErrValidation):
		return err
	}
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
