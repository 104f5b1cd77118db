package errors

import "errors"

// Common error types for the sign-in client
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password rejected by provider")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")

	// Federated sign-in errors
	ErrInvalidIDToken     = errors.New("invalid id token")
	ErrUnsupportedIDP     = errors.New("unsupported identity provider")
	ErrInvalidState       = errors.New("invalid state")
	ErrFlowExpired        = errors.New("authorization flow expired")
	ErrMissingCredentials = errors.New("email and password are required")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
