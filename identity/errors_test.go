package identity_test

import (
	"testing"

	"github.com/jrsteele09/go-signin-client/identity"
	autherrors "github.com/jrsteele09/go-signin-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestProviderError_MapsToSentinels(t *testing.T) {
	cases := map[string]error{
		"INVALID_LOGIN_CREDENTIALS":   autherrors.ErrInvalidCredentials,
		"EMAIL_NOT_FOUND":             autherrors.ErrInvalidCredentials,
		"EMAIL_EXISTS":                autherrors.ErrEmailExists,
		"USER_DISABLED":               autherrors.ErrUserBlocked,
		"TOO_MANY_ATTEMPTS_TRY_LATER": autherrors.ErrTooManyAttempts,
		"INVALID_PROVIDER_ID":         autherrors.ErrUnsupportedIDP,
	}
	for code, want := range cases {
		t.Run(code, func(t *testing.T) {
			err := errors.Wrap(identity.NewProviderError(code), "[test] call")
			require.True(t, autherrors.Is(err, want))

			var perr *identity.ProviderError
			require.True(t, autherrors.As(err, &perr))
			require.Equal(t, code, perr.Code)
		})
	}
}
