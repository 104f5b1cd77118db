package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type SplashConfig interface {
	GetSplashDelay() time.Duration
}

type Splash struct{}

var _ SplashConfig = Splash{}

const defaultSplashDelay = 7 * time.Second

func (Splash) GetSplashDelay() time.Duration {
	raw := GetEnv("SPLASH_DELAY", "")
	if raw == "" {
		return defaultSplashDelay
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Warn().Str("value", raw).Msg("invalid SPLASH_DELAY, using default")
		return defaultSplashDelay
	}
	return d
}
