// Package config reads ieum's settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/session"
)

// Config holds every IEUM_* setting.
type Config struct {
	APIURL string `env:"IEUM_API_URL" envDefault:"https://api.ieum.app"`

	KakaoClientID     string `env:"IEUM_KAKAO_CLIENT_ID"`
	KakaoClientSecret string `env:"IEUM_KAKAO_CLIENT_SECRET"`
	KakaoAuthURL      string `env:"IEUM_KAKAO_AUTH_URL" envDefault:"https://kauth.kakao.com/oauth/authorize"`
	KakaoTokenURL     string `env:"IEUM_KAKAO_TOKEN_URL" envDefault:"https://kauth.kakao.com/oauth/token"`
	CallbackPort      int    `env:"IEUM_CALLBACK_PORT" envDefault:"0"`

	// Token takes precedence over the stored normal-mode token.
	Token string `env:"IEUM_TOKEN"`

	StateDir      string `env:"IEUM_STATE_DIR"`
	RedisAddr     string `env:"IEUM_REDIS_ADDR"`
	RedisPassword string `env:"IEUM_REDIS_PASSWORD"`
	LogLevel      string `env:"IEUM_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env from the working directory when present, then parses the
// environment. Real environment variables win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap parses settings from m instead of the process environment.
func FromMap(m map[string]string) (Config, error) {
	return parse(env.Options{Environment: m})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CallbackPort < 0 || cfg.CallbackPort > 65535 {
		return Config{}, fmt.Errorf("parse env: IEUM_CALLBACK_PORT %d out of range", cfg.CallbackPort)
	}
	return cfg, nil
}

// Dir returns the state directory, ~/.ieum unless overridden.
func (c Config) Dir() (string, error) {
	if c.StateDir != "" {
		return c.StateDir, nil
	}
	return session.DefaultDir()
}

// Provider returns the Kakao application settings.
func (c Config) Provider() auth.ProviderConfig {
	return auth.ProviderConfig{
		ClientID:     c.KakaoClientID,
		ClientSecret: c.KakaoClientSecret,
		AuthURL:      c.KakaoAuthURL,
		TokenURL:     c.KakaoTokenURL,
	}
}
