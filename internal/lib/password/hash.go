// Package password hashes and verifies user passwords with bcrypt.
// Plaintext passwords never leave this package in any other form.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

var (
	// ErrMismatch is returned by CompareHash when the password does not match the hash.
	ErrMismatch = errors.New("password does not match")
	// ErrTooLong is returned by GetHash for passwords longer than MaxLength bytes.
	ErrTooLong = errors.New("password is too long")
)

// GetHash returns a salted bcrypt hash of the password.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if len(password) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash reports whether password matches the stored hash.
// A plain mismatch yields ErrMismatch; a malformed hash yields a wrapped bcrypt error.
func CompareHash(hash, password string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
