// Package config loads server settings from the environment.
//
// A .env file in the working directory is loaded first (development only;
// missing files are ignored), then variables are parsed into Config.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every environment-driven setting.
type Config struct {
	Port           string        `env:"PORT"             envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"        envDefault:"info"`
	StartWordsFile string        `env:"START_WORDS_FILE"`
	DictionaryFile string        `env:"DICTIONARY_FILE"`
	DictionaryLang string        `env:"DICTIONARY_LANG"  envDefault:"en"`
	DBPath         string        `env:"DB_PATH"          envDefault:"./data/scramble.db"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	Production     bool          `env:"PRODUCTION"       envDefault:"false"`
	Auth           AuthConfig
	Sessions       SessionConfig
}

// SessionConfig controls eviction of idle in-memory game sessions.
type SessionConfig struct {
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL"       envDefault:"12h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// AuthConfig controls token signing and the auth cookie.
type AuthConfig struct {
	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"scramble_token"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.JWTExpiresDays <= 0 {
		cfg.Auth.JWTExpiresDays = 14
	}
	if cfg.Sessions.IdleTTL <= 0 {
		cfg.Sessions.IdleTTL = 12 * time.Hour
	}
	if cfg.Sessions.SweepInterval <= 0 {
		cfg.Sessions.SweepInterval = 5 * time.Minute
	}
	return cfg, nil
}

// ZerologLevel returns the configured level, or info if it does not parse.
func (c Config) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
