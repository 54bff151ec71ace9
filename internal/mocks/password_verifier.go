package mocks

import (
	"sync"

	"github.com/phrazzld/grams-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// MockPasswordVerifier accepts every password when ShouldSucceed is set and
// rejects every password otherwise, unless CompareFn overrides it. Rejections
// return bcrypt.ErrMismatchedHashAndPassword like the real verifier.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	mu        sync.Mutex
	passwords []string
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.passwords = append(m.passwords, password)
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !m.ShouldSucceed {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}

// Compared returns every plaintext password passed to Compare, in order.
func (m *MockPasswordVerifier) Compared() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.passwords...)
}
