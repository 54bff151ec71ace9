package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/domain"
)

// GramParams are the permitted attributes of a submitted gram. Unknown keys
// are ignored.
type GramParams struct {
	Message *string `json:"message"`

	present bool
}

// UnmarshalJSON records whether the object had any keys so an empty object
// counts as a missing parameter.
func (p *GramParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	p.present = len(raw) > 0
	if msg, ok := raw["message"]; ok && string(msg) != "null" {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return fmt.Errorf("gram.message: %w", err)
		}
		p.Message = &s
	}
	return nil
}

// MessageValue returns the submitted message, or "" when none was sent.
func (p *GramParams) MessageValue() string {
	if p == nil || p.Message == nil {
		return ""
	}
	return *p.Message
}

// GramRequest is the body of create and update requests: {"gram": {...}}.
type GramRequest struct {
	Gram *GramParams `json:"gram"`
}

// Validate implements the interface checked by shared.ValidateRequest.
func (r *GramRequest) Validate() error {
	if r.Gram == nil || !r.Gram.present {
		return fmt.Errorf("%w: gram", ErrParameterMissing)
	}
	return nil
}

// GramResponse is the public representation of a gram.
type GramResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toGramResponse(g *domain.Gram) GramResponse {
	return GramResponse{
		ID:        g.ID,
		UserID:    g.UserID,
		Message:   g.Message,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GramListResponse is the index page.
type GramListResponse struct {
	Grams  []GramResponse `json:"grams"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// GramFormValues are the values a gram form is rendered with.
type GramFormValues struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Message string     `json:"message"`
}

// GramFormResponse describes the form for creating or editing a gram.
type GramFormResponse struct {
	Gram   GramFormValues `json:"gram"`
	Action string         `json:"action"`
	Method string         `json:"method"`
}

// GramValidationErrorResponse re-renders a form after a rejected submission.
type GramValidationErrorResponse struct {
	shared.ValidationErrorResponse
	Gram GramFormValues `json:"gram"`
}

// UserParams are the permitted attributes of a submitted account.
type UserParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRequest is the body of sign-in and registration: {"user": {...}}.
type UserRequest struct {
	User *UserParams `json:"user"`
}

// Validate implements the interface checked by shared.ValidateRequest.
func (r *UserRequest) Validate() error {
	if r.User == nil {
		return fmt.Errorf("%w: user", ErrParameterMissing)
	}
	return nil
}

// AccountFormResponse describes the sign-in or sign-up form.
type AccountFormResponse struct {
	User   UserFormValues `json:"user"`
	Action string         `json:"action"`
	Method string         `json:"method"`
}

// UserFormValues are the non-secret values an account form is rendered with.
type UserFormValues struct {
	Email string `json:"email"`
}

// UserValidationErrorResponse re-renders the sign-up form after a rejected
// registration.
type UserValidationErrorResponse struct {
	shared.ValidationErrorResponse
	User UserFormValues `json:"user"`
}

// AuthResponse defines the successful response for sign-in and registration.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    string    `json:"expires_at"`
	Notice       string    `json:"notice,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}
