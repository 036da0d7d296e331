// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the optional TOML overlay looked up next to the binary.
const DefaultFile = "venombot.toml"

// Config holds all application configuration.
type Config struct {
	Token     string
	AppID     string
	PublicKey string
	OwnerID   string

	Prefix      string
	DefaultCity string

	WeatherAPIKey string
	RapidAPIKey   string

	Port           string
	SessionTimeout time.Duration
	SessionGrace   time.Duration
}

// fileOverlay is the TOML file shape. Zero values leave the environment
// configuration untouched.
type fileOverlay struct {
	Prefix         string `toml:"prefix"`
	DefaultCity    string `toml:"default_city"`
	OwnerID        string `toml:"owner_id"`
	Port           string `toml:"port"`
	SessionTimeout string `toml:"session_timeout"`
	SessionGrace   string `toml:"session_grace"`
}

// Load reads configuration from environment variables, then applies the
// optional TOML overlay file (VENOMBOT_CONFIG or ./venombot.toml).
func Load() (*Config, error) {
	cfg := &Config{
		Token:          getEnv("DISCORD_TOKEN", ""),
		AppID:          getEnv("APP_ID", ""),
		PublicKey:      getEnv("PUBLIC_KEY", ""),
		OwnerID:        getEnv("OWNER_ID", ""),
		Prefix:         getEnv("COMMAND_PREFIX", "!"),
		DefaultCity:    getEnv("DEFAULT_CITY", "Muzaffarpur"),
		WeatherAPIKey:  getEnv("WEATHER_API_KEY", ""),
		RapidAPIKey:    getEnv("RAPIDAPI_KEY", ""),
		Port:           getEnv("PORT", "8080"),
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 5*time.Minute),
		SessionGrace:   getEnvDuration("SESSION_GRACE", 10*time.Minute),
	}

	path := getEnv("VENOMBOT_CONFIG", DefaultFile)
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var overlay fileOverlay
	if _, err := toml.DecodeFile(path, &overlay); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.DefaultCity != "" {
		c.DefaultCity = overlay.DefaultCity
	}
	if overlay.OwnerID != "" {
		c.OwnerID = overlay.OwnerID
	}
	if overlay.Port != "" {
		c.Port = overlay.Port
	}
	if overlay.SessionTimeout != "" {
		d, err := time.ParseDuration(overlay.SessionTimeout)
		if err != nil {
			return fmt.Errorf("parse session_timeout: %w", err)
		}
		c.SessionTimeout = d
	}
	if overlay.SessionGrace != "" {
		d, err := time.ParseDuration(overlay.SessionGrace)
		if err != nil {
			return fmt.Errorf("parse session_grace: %w", err)
		}
		c.SessionGrace = d
	}
	return nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN cannot be empty")
	}
	if c.Prefix == "" {
		return fmt.Errorf("COMMAND_PREFIX cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be > 0")
	}
	if c.SessionGrace <= 0 {
		return fmt.Errorf("SESSION_GRACE must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
