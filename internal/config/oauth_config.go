package config

import (
	"strings"
	"time"
)

type OAuthConfig interface {
	GetPlatform() string
	GetGoogleClientID() string
	GetIOSClientID() string
	GetAndroidClientID() string
	GetGoogleClientSecret() string
	GetOAuthIssuer() string
	GetOAuthScopes() []string
	GetRedirectURL() string
	GetCallbackAddr() string
	GetFlowTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetPlatform returns one of "web", "ios" or "android"
func (OAuth) GetPlatform() string {
	return strings.ToLower(GetEnv("PLATFORM", "web"))
}

func (OAuth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (OAuth) GetIOSClientID() string {
	return GetEnv("GOOGLE_IOS_CLIENT_ID", "")
}

func (OAuth) GetAndroidClientID() string {
	return GetEnv("GOOGLE_ANDROID_CLIENT_ID", "")
}

func (OAuth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (OAuth) GetOAuthIssuer() string {
	return GetEnv("OAUTH_ISSUER", "https://accounts.google.com")
}

func (OAuth) GetOAuthScopes() []string {
	return strings.Fields(GetEnv("OAUTH_SCOPES", "profile email"))
}

func (OAuth) GetRedirectURL() string {
	return GetEnv("OAUTH_REDIRECT_URL", "http://127.0.0.1:8085/redirect")
}

// GetCallbackAddr is the loopback address the redirect listener binds to
func (OAuth) GetCallbackAddr() string {
	return GetEnv("OAUTH_CALLBACK_ADDR", "127.0.0.1:8085")
}

func (OAuth) GetFlowTimeout() time.Duration {
	return 15 * time.Minute
}
