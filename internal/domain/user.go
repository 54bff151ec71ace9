package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Validation errors for User
var (
	ErrEmptyUserID      = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyEmail       = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password is too short", ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password is too long", ErrValidation)
	ErrEmptyPassword    = fmt.Errorf("%w: password cannot be empty", ErrValidation)
)

// User represents a registered user who can post grams.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and plaintext password.
// The email is trimmed and lower-cased. The caller is responsible for
// hashing the password before the user is stored.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail returns the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// A plaintext password is checked for length when present; otherwise the
// user must already carry a hashed password.
func (u *User) Validate() error {
	var errs ValidationErrors

	if u.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "can't be blank", ErrEmptyUserID))
	}

	switch {
	case u.Email == "":
		errs = append(errs, NewValidationError("email", "can't be blank", ErrEmptyEmail))
	case !validEmail(u.Email):
		errs = append(errs, NewValidationError("email", "is invalid", ErrInvalidEmail))
	}

	switch {
	case u.Password == "" && u.HashedPassword == "":
		errs = append(errs, NewValidationError("password", "can't be blank", ErrEmptyPassword))
	case u.Password == "":
	case len(u.Password) < MinPasswordLength:
		errs = append(errs, NewValidationError("password",
			fmt.Sprintf("is too short (minimum is %d characters)", MinPasswordLength),
			ErrPasswordTooShort))
	case len(u.Password) > MaxPasswordLength:
		errs = append(errs, NewValidationError("password",
			fmt.Sprintf("is too long (maximum is %d characters)", MaxPasswordLength),
			ErrPasswordTooLong))
	}

	return errs.errOrNil()
}

// validEmail accepts a bare address with a dotted domain, rejecting display
// names such as "Bob <bob@example.com>".
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
