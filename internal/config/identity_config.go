package config

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIdentityAPIKey returns the web API key of the identity provider project.
// An empty key makes the client fall back to the in-memory provider.
func (Identity) GetIdentityAPIKey() string {
	return GetEnv("IDENTITY_API_KEY", "")
}

func (Identity) GetIdentityBaseURL() string {
	return GetEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1")
}
