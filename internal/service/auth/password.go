package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login attempt's plaintext password against the
// bcrypt hash stored on the user row. Hashing itself lives in the user
// store, which owns the configured cost; the auth service only ever
// compares.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// NewBcryptVerifier returns the bcrypt-backed verifier used in production.
func NewBcryptVerifier() PasswordVerifier {
	return bcryptVerifier{}
}

type bcryptVerifier struct{}

func (bcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
