// Package config loads runtime configuration from a YAML file and the
// environment, with the environment taking precedence.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the process configuration: where the store lives, which
// workspace to scope paths to, and who the local user is.
type Config struct {
	// Workspace prefixes every store path; empty means the root scope.
	Workspace string `yaml:"workspace" env:"LEANCOFFEE_WORKSPACE"`

	// StoreURL is the websocket backend. Empty selects the local SQLite
	// store at DatabasePath.
	StoreURL     string `yaml:"store_url" env:"LEANCOFFEE_STORE_URL"`
	DatabasePath string `yaml:"database" env:"LEANCOFFEE_DB" env-default:"leancoffee.db"`

	LogLevel string `yaml:"log_level" env:"LEANCOFFEE_LOG_LEVEL" env-default:"info"`

	// Identity. UserID empty means an anonymous session with a random id.
	UserID string `yaml:"user_id" env:"LEANCOFFEE_USER_ID"`
	Email  string `yaml:"email" env:"LEANCOFFEE_EMAIL"`

	// AdminMode is the local toggle for activating granted admin rights.
	AdminMode bool `yaml:"admin_mode" env:"LEANCOFFEE_ADMIN_MODE" env-default:"false"`
}

// Load reads an optional .env file, then the YAML file at path (skipped
// when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}
