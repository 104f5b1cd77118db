package config

type Config interface {
	EnvConfig
	IdentityConfig
	OAuthConfig
	SplashConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type IdentityConfig interface {
	GetIdentityAPIKey() string
	GetIdentityBaseURL() string
}

type mainConfig struct {
	EnvVars
	Identity
	OAuth
	Splash
}

func New() Config {
	return mainConfig{}
}
