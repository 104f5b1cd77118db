package form

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	minPasswordLength = 6
	minPasswordDigits = 1
	maxPasswordDigits = 2
)

var (
	ErrPasswordTooShort      = errors.New("password must be at least 6 characters long")
	ErrPasswordNoLowercase   = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoUppercase   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoSymbol      = errors.New("password must contain at least one symbol")
	ErrPasswordNoDigit       = errors.New("password must contain at least one number")
	ErrPasswordTooManyDigits = errors.New("password must contain no more than two numbers")
)

// ValidatePasswordStrength checks the sign-up password rules:
//   - at least 6 characters long
//   - at least one lowercase and one uppercase ASCII letter
//   - at least one character that is not an ASCII letter or digit
//   - one or two ASCII digits
//
// The two digit ceiling is current product behaviour and is kept as is.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var (
		hasLower  bool
		hasUpper  bool
		hasSymbol bool
		digits    int
	)
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			digits++
		default:
			hasSymbol = true
		}
	}

	switch {
	case !hasLower:
		return ErrPasswordNoLowercase
	case !hasUpper:
		return ErrPasswordNoUppercase
	case !hasSymbol:
		return ErrPasswordNoSymbol
	case digits < minPasswordDigits:
		return ErrPasswordNoDigit
	case digits > maxPasswordDigits:
		return ErrPasswordTooManyDigits
	}
	return nil
}

// IsStrongPassword reports whether password passes ValidatePasswordStrength.
func IsStrongPassword(password string) bool {
	return ValidatePasswordStrength(password) == nil
}
