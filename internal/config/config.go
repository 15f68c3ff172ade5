// Package config loads server configuration from the environment.
//
// A .env file in the working directory is loaded first when present, so
// local development can keep settings out of the shell. Real environment
// variables always win over .env values.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the full server configuration.
type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// DBType selects the store: memory, sqlite, postgres or mysql.
	DBType       string `env:"DB_TYPE" envDefault:"memory"`
	DBPath       string `env:"DB_PATH" envDefault:"./data/wordrush.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	StoreRetries int    `env:"STORE_RETRIES" envDefault:"5"`

	WordsFile        string `env:"WORDS_FILE"`        // empty: embedded list
	AchievementsFile string `env:"ACHIEVEMENTS_FILE"` // empty: built-in catalog
	DailySalt        string `env:"DAILY_SALT" envDefault:"wordrush-daily"`

	JWTSecret    string `env:"JWT_SECRET"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load reads .env (if any) and parses the environment into a Config.
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
	cfg.DBType = strings.ToLower(strings.TrimSpace(cfg.DBType))
	switch cfg.DBType {
	case "memory", "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
	default:
		return Config{}, fmt.Errorf("parse env: unsupported DB_TYPE %q", cfg.DBType)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("parse env: LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Level returns the configured zerolog level.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
