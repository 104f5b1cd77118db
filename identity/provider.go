package identity

import (
	"context"
	"time"
)

const (
	// ProviderPassword identifies accounts created with an email and password.
	ProviderPassword = "password"
	// ProviderGoogle identifies accounts federated through Google.
	ProviderGoogle = "google.com"
)

// User is the identity provider's record of the signed in user. Callers only
// rely on whether one is present; the fields are informational.
type User struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	ProviderID    string    `json:"provider_id,omitempty"`
	EmailVerified bool      `json:"email_verified,omitempty"`
	SignedInAt    time.Time `json:"signed_in_at"`

	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
}

// Credential is a provider specific proof of identity obtained outside of the
// email/password path, e.g. from an OAuth consent flow.
type Credential struct {
	ProviderID  string
	IDToken     string
	AccessToken string
}

// GoogleCredential wraps a Google id_token so it can be submitted with SignInWithCredential.
func GoogleCredential(idToken string) Credential {
	return Credential{
		ProviderID: ProviderGoogle,
		IDToken:    idToken,
	}
}

// AuthStateListener receives the current user, or nil once signed out.
type AuthStateListener func(user *User)

// StateNotifier is the subscription half of a Provider.
type StateNotifier interface {
	// OnAuthStateChanged registers listener and returns a function that removes it.
	// The listener is invoked straight away with the current user.
	OnAuthStateChanged(listener AuthStateListener) (unsubscribe func())
}

// PasswordAuthenticator signs users in or up with an email and password.
type PasswordAuthenticator interface {
	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*User, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
}

// CredentialAuthenticator signs users in with a federated credential.
type CredentialAuthenticator interface {
	SignInWithCredential(ctx context.Context, credential Credential) (*User, error)
}

// Provider is the full identity provider client.
type Provider interface {
	StateNotifier
	PasswordAuthenticator
	CredentialAuthenticator
	CurrentUser() *User
}
