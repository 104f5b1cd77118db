package identity_test

import (
	"testing"

	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/stretchr/testify/require"
)

func TestNotifier_FiresCurrentStateOnRegister(t *testing.T) {
	n := identity.NewNotifier()
	n.SetUser(&identity.User{UID: "u-1"})

	var got []*identity.User
	unsubscribe := n.OnAuthStateChanged(func(u *identity.User) {
		got = append(got, u)
	})
	defer unsubscribe()

	require.Len(t, got, 1)
	require.Equal(t, "u-1", got[0].UID)
}

func TestNotifier_SetUserNotifiesUntilUnsubscribed(t *testing.T) {
	n := identity.NewNotifier()

	var got []*identity.User
	unsubscribe := n.OnAuthStateChanged(func(u *identity.User) {
		got = append(got, u)
	})

	n.SetUser(&identity.User{UID: "u-1"})
	n.SetUser(nil)
	unsubscribe()
	unsubscribe()
	n.SetUser(&identity.User{UID: "u-2"})

	require.Len(t, got, 3)
	require.Nil(t, got[0])
	require.Equal(t, "u-1", got[1].UID)
	require.Nil(t, got[2])
	require.Equal(t, "u-2", n.CurrentUser().UID)
}

func TestProviderError(t *testing.T) {
	t.Run("known code", func(t *testing.T) {
		err := identity.NewProviderError("EMAIL_EXISTS")
		require.Equal(t, "EMAIL_EXISTS", err.Code)
		require.Contains(t, err.Error(), "already in use")
	})

	t.Run("code with detail", func(t *testing.T) {
		err := identity.NewProviderError("WEAK_PASSWORD : Password should be at least 6 characters")
		require.Equal(t, "WEAK_PASSWORD", err.Code)
		require.Equal(t, "Password should be at least 6 characters", err.Error())
	})

	t.Run("unknown code", func(t *testing.T) {
		err := identity.NewProviderError("SOMETHING_ODD")
		require.Contains(t, err.Error(), "SOMETHING_ODD")
		require.Nil(t, err.Unwrap())
	})
}
