package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil on a match and an error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks hashes produced by the user store's bcrypt hashing.
type BcryptVerifier struct{}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare returns bcrypt.ErrMismatchedHashAndPassword on a wrong password.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
