package form_test

import (
	"testing"

	"github.com/jrsteele09/go-signin-client/form"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"too short", "Abc1!", form.ErrPasswordTooShort},
		{"minimal valid", "Abcd1!", nil},
		{"two digits", "Abcd12!", nil},
		{"three digits", "Abcd123!", form.ErrPasswordTooManyDigits},
		{"no uppercase", "abcd1!", form.ErrPasswordNoUppercase},
		{"no lowercase", "ABCD1!", form.ErrPasswordNoLowercase},
		{"no symbol", "Abcde1", form.ErrPasswordNoSymbol},
		{"underscore is a symbol", "Abcd1_", nil},
		{"space is a symbol", "Abcd 1", nil},
		{"no digit", "Abcde!", form.ErrPasswordNoDigit},
		{"digits not at end", "1Abcd!", nil},
		{"non ascii letter counts as symbol", "Abcdé1", nil},
		{"empty", "", form.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := form.ValidatePasswordStrength(tt.password)
			if tt.want == nil {
				require.NoError(t, err)
				require.True(t, form.IsStrongPassword(tt.password))
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.False(t, form.IsStrongPassword(tt.password))
		})
	}
}

func TestValidatePasswordStrength_CountsRunes(t *testing.T) {
	// Five characters, seven bytes.
	require.ErrorIs(t, form.ValidatePasswordStrength("Ab1!é"), form.ErrPasswordTooShort)
}
