package oauthflow

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"

	defaultFlowTimeout = 15 * time.Minute
)

// ClientIDs holds the OAuth client registered for each platform.
type ClientIDs struct {
	Web     string
	IOS     string
	Android string
}

type Config struct {
	ClientIDs    ClientIDs
	Platform     string
	ClientSecret string
	// Issuer is the OpenID Connect issuer used for discovery.
	Issuer string
	// Scopes requested in addition to openid.
	Scopes []string
	// RedirectURL is the pre-registered redirect target.
	RedirectURL string
	// FlowTimeout bounds how long a started flow can wait for its redirect.
	FlowTimeout time.Duration
}

// ClientID picks the client for the configured platform, falling back to the web client.
func (c Config) ClientID() string {
	switch c.Platform {
	case PlatformIOS:
		if c.ClientIDs.IOS != "" {
			return c.ClientIDs.IOS
		}
	case PlatformAndroid:
		if c.ClientIDs.Android != "" {
			return c.ClientIDs.Android
		}
	}
	return c.ClientIDs.Web
}

func (c Config) Validate() error {
	if c.ClientID() == "" {
		return errors.New("client id is required")
	}
	if c.RedirectURL == "" {
		return errors.New("redirect url is required")
	}
	if _, err := url.Parse(c.RedirectURL); err != nil {
		return errors.Wrap(err, "redirect url")
	}
	return nil
}

func (c Config) flowTimeout() time.Duration {
	if c.FlowTimeout <= 0 {
		return defaultFlowTimeout
	}
	return c.FlowTimeout
}
