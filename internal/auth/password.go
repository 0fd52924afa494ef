package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"cashy/internal/core"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against its stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength enforces the password-change requirements:
// minimum length, an uppercase letter, a digit, and a special character.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return core.Invalid(core.KindWeakPassword, "password must be at least 8 characters")
	}
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return core.Invalid(core.KindWeakPassword, "password must contain an uppercase letter")
	}
	if !hasDigit {
		return core.Invalid(core.KindWeakPassword, "password must contain a digit")
	}
	if !hasSpecial {
		return core.Invalid(core.KindWeakPassword, "password must contain a special character")
	}
	return nil
}
