package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrGateNotConfigured is returned when no teacher password was set
var ErrGateNotConfigured = errors.New("teacher password not configured")

// ErrWrongPassword is returned when the supplied password does not match
var ErrWrongPassword = errors.New("incorrect password")

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordGate guards protected teacher actions with a shared password.
// It is UI friction only: anyone who knows the password passes, and no
// identity or role is checked.
type PasswordGate struct {
	hash string
}

// NewPasswordGate hashes password once at startup. An empty password yields a
// gate that refuses every attempt.
func NewPasswordGate(password string) (*PasswordGate, error) {
	if password == "" {
		return &PasswordGate{}, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &PasswordGate{hash: hash}, nil
}

// Check verifies attempt against the configured password
func (g *PasswordGate) Check(attempt string) error {
	if g.hash == "" {
		return ErrGateNotConfigured
	}
	if !CheckPassword(attempt, g.hash) {
		return ErrWrongPassword
	}
	return nil
}
