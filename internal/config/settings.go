package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level options read from the environment.
// Command-line flags take precedence when both are given.
type Settings struct {
	ConfigFile string `env:"FIRESIM_CONFIG"`
	Format     string `env:"FIRESIM_FORMAT" envDefault:"console"`
	Debug      bool   `env:"FIRESIM_DEBUG" envDefault:"false"`
	Workers    int    `env:"FIRESIM_WORKERS" envDefault:"0"` // 0 means GOMAXPROCS
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if s.Workers < 0 {
		return Settings{}, fmt.Errorf("FIRESIM_WORKERS must not be negative, got %d", s.Workers)
	}
	return s, nil
}
