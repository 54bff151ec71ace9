package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "with underlying error",
			err:      &ServiceError{Service: "gram", Operation: "create", Err: errors.New("database connection failed")},
			expected: "gram service create operation failed: database connection failed",
		},
		{
			name:     "without underlying error",
			err:      &ServiceError{Service: "user", Operation: "get"},
			expected: "user service get operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNewServiceError(t *testing.T) {
	dbErr := errors.New("connection reset")
	validation := domain.ValidationErrors{domain.NewValidationError("message", "can't be blank", domain.ErrBlankMessage)}

	tests := []struct {
		name   string
		err    error
		wantIs error
	}{
		{"store gram not found", fmt.Errorf("load: %w", store.ErrGramNotFound), ErrGramNotFound},
		{"store user not found", store.ErrUserNotFound, ErrUserNotFound},
		{"duplicate email", store.ErrEmailExists, ErrEmailTaken},
		{"missing owner", fmt.Errorf("%w: user gone", store.ErrInvalidEntity), ErrOwnerMissing},
		{"validation", validation, domain.ErrBlankMessage},
		{"unexpected", dbErr, dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewServiceError("gram", "op", tt.err)
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}

	assert.NoError(t, NewServiceError("gram", "op", nil))

	var ve domain.ValidationErrors
	require.ErrorAs(t, NewServiceError("gram", "create", validation), &ve)
	assert.Equal(t, map[string][]string{"message": {"can't be blank"}}, ve.Fields())

	var se *ServiceError
	require.ErrorAs(t, NewServiceError("gram", "list", dbErr), &se)
	assert.Equal(t, "list", se.Operation)
}
