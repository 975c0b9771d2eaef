package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"FIRESIM_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("FIRESIM_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("FIRESIM_CONFIG", "plan.yaml")
	t.Setenv("FIRESIM_FORMAT", "csv")
	t.Setenv("FIRESIM_DEBUG", "true")
	t.Setenv("FIRESIM_WORKERS", "4")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if s.ConfigFile != "plan.yaml" || s.Format != "csv" || !s.Debug || s.Workers != 4 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadSettingsRejectsNegativeWorkers(t *testing.T) {
	t.Setenv("FIRESIM_WORKERS", "-1")

	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected error for negative workers")
	}
}
