package identity

import (
	"fmt"
	"strings"

	autherrors "github.com/jrsteele09/go-signin-client/internal/errors"
)

// ProviderError is a rejection reported by the identity provider. Message is
// the provider's human readable text and is what gets shown to the user.
type ProviderError struct {
	Code    string
	Message string
	kind    error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Unwrap exposes the sentinel the provider code maps onto, if any.
func (e *ProviderError) Unwrap() error {
	return e.kind
}

var codeKinds = map[string]error{
	"EMAIL_NOT_FOUND":             autherrors.ErrInvalidCredentials,
	"INVALID_PASSWORD":            autherrors.ErrInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":   autherrors.ErrInvalidCredentials,
	"INVALID_EMAIL":               autherrors.ErrInvalidCredentials,
	"EMAIL_EXISTS":                autherrors.ErrEmailExists,
	"WEAK_PASSWORD":               autherrors.ErrWeakPassword,
	"USER_DISABLED":               autherrors.ErrUserBlocked,
	"TOO_MANY_ATTEMPTS_TRY_LATER": autherrors.ErrTooManyAttempts,
	"INVALID_IDP_RESPONSE":        autherrors.ErrInvalidIDToken,
	"INVALID_ID_TOKEN":            autherrors.ErrInvalidIDToken,
	"INVALID_PROVIDER_ID":         autherrors.ErrUnsupportedIDP,
}

var codeMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "There is no user record corresponding to this email.",
	"INVALID_PASSWORD":            "The password is invalid.",
	"INVALID_LOGIN_CREDENTIALS":   "The email or password is incorrect.",
	"INVALID_EMAIL":               "The email address is badly formatted.",
	"EMAIL_EXISTS":                "The email address is already in use by another account.",
	"WEAK_PASSWORD":               "The password must be 6 characters long or more.",
	"USER_DISABLED":               "The user account has been disabled by an administrator.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Access to this account has been temporarily disabled due to many failed login attempts.",
	"INVALID_IDP_RESPONSE":        "The supplied auth credential is malformed or has expired.",
	"INVALID_PROVIDER_ID":         "The sign-in provider is not supported.",
}

// NewProviderError builds a ProviderError from a provider error code. Codes may
// carry a detail suffix ("WEAK_PASSWORD : Password should be at least 6 characters").
func NewProviderError(code string) *ProviderError {
	base, detail, _ := strings.Cut(code, ":")
	base = strings.TrimSpace(base)
	detail = strings.TrimSpace(detail)

	msg := codeMessages[base]
	if detail != "" {
		msg = detail
	}
	if msg == "" {
		msg = fmt.Sprintf("identity provider error (%s)", base)
	}
	return &ProviderError{Code: base, Message: msg, kind: codeKinds[base]}
}
