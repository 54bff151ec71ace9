// Package auth issues and validates the JWTs that carry a signed-in user,
// and verifies passwords against their bcrypt hashes.
package auth
