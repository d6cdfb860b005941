package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	JournalPath string `env:"DRAW_STEEL_TEST_JOURNAL_PATH" envDefault:"rolls.db"`
	Locale      string `env:"DRAW_STEEL_TEST_LOCALE" envDefault:"en-US"`
	Seed        int64  `env:"DRAW_STEEL_TEST_SEED"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.JournalPath != "rolls.db" {
		t.Fatalf("expected default journal path, got %q", cfg.JournalPath)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected default locale, got %q", cfg.Locale)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("DRAW_STEEL_TEST_LOCALE", "pt-BR")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected locale override, got %q", cfg.Locale)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("DRAW_STEEL_TEST_SEED", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
