// Package config loads the application configuration from the environment.
//
// Everything tunable lives in one struct that main() loads once and injects
// into the server — no package reads os.Getenv on its own. This keeps the
// signing secret and the bcrypt work factor out of global state: tests and
// alternative entry points construct a Config directly.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	BcryptCost int
	// TokenTTL is the lifetime of issued tokens. Zero means tokens never
	// expire — the service has no refresh flow, so a forced expiry would
	// just log everyone out on a timer.
	TokenTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for everything except JWT_SECRET, which has no safe default.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, errors.New("config: PORT must be an integer")
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("config: BCRYPT_COST must be a valid bcrypt cost")
	}

	var ttl time.Duration
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return nil, errors.New("config: TOKEN_TTL must be a duration like 24h")
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("config: JWT_SECRET is required (try JWT_SECRET=$(openssl rand -hex 32))")
	}

	return &Config{
		Port:       port,
		DBPath:     getEnv("DB_PATH", "data/messagely.db"),
		JWTSecret:  secret,
		BcryptCost: cost,
		TokenTTL:   ttl,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
