package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength is the longest message, in characters, a gram may hold.
const MaxMessageLength = 2000

// Validation errors for Gram
var (
	ErrEmptyGramID     = fmt.Errorf("%w: gram ID cannot be empty", ErrValidation)
	ErrEmptyGramUserID = fmt.Errorf("%w: gram user ID cannot be empty", ErrValidation)
	ErrBlankMessage    = fmt.Errorf("%w: message cannot be blank", ErrValidation)
	ErrMessageTooLong  = fmt.Errorf("%w: message is too long", ErrValidation)
)

// Gram is a short text message posted by a user.
type Gram struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGram creates a new Gram owned by userID.
// Returns ValidationErrors if the message or owner is invalid.
func NewGram(userID uuid.UUID, message string) (*Gram, error) {
	now := time.Now().UTC()
	gram := &Gram{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := gram.Validate(); err != nil {
		return nil, err
	}

	return gram, nil
}

// Validate checks if the Gram has valid data.
func (g *Gram) Validate() error {
	var errs ValidationErrors

	if g.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "can't be blank", ErrEmptyGramID))
	}
	if g.UserID == uuid.Nil {
		errs = append(errs, NewValidationError("user", "must exist", ErrEmptyGramUserID))
	}
	if err := validateMessage(g.Message); err != nil {
		errs = append(errs, err)
	}

	return errs.errOrNil()
}

// UpdateMessage replaces the message and bumps UpdatedAt.
// The gram is left untouched when the new message is invalid.
func (g *Gram) UpdateMessage(message string) error {
	if err := validateMessage(message); err != nil {
		return ValidationErrors{err}
	}

	g.Message = message
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// validateMessage treats whitespace-only text as blank.
func validateMessage(message string) *ValidationError {
	if strings.TrimSpace(message) == "" {
		return NewValidationError("message", "can't be blank", ErrBlankMessage)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return NewValidationError("message",
			fmt.Sprintf("is too long (maximum is %d characters)", MaxMessageLength),
			ErrMessageTooLong)
	}
	return nil
}
