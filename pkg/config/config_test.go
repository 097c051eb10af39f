package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}

	if cfg.Ingest.Retry.MaxAttempts != 3 {
		t.Errorf("retry.max_attempts = %d, want 3", cfg.Ingest.Retry.MaxAttempts)
	}
	if cfg.Ingest.Retry.MaxDelay != 8*time.Second {
		t.Errorf("retry.max_delay = %v, want 8s", cfg.Ingest.Retry.MaxDelay)
	}
	if cfg.Twitch.TokenTimeout != 15*time.Second {
		t.Errorf("twitch.token_timeout = %v, want 15s", cfg.Twitch.TokenTimeout)
	}
	if cfg.Twitch.RequestTimeout != 10*time.Second {
		t.Errorf("twitch.request_timeout = %v, want 10s", cfg.Twitch.RequestTimeout)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q, want :8080", cfg.Server.Address)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":9999"
ingest:
  retry:
    max_attempts: 5
twitch:
  client_id: "abc"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("server.address = %q, want :9999", cfg.Server.Address)
	}
	if cfg.Ingest.Retry.MaxAttempts != 5 {
		t.Errorf("retry.max_attempts = %d, want 5", cfg.Ingest.Retry.MaxAttempts)
	}
	if cfg.Twitch.ClientID != "abc" {
		t.Errorf("twitch.client_id = %q, want abc", cfg.Twitch.ClientID)
	}
	// Untouched sections keep defaults.
	if cfg.YouTube.APIBaseURL == "" {
		t.Error("expected youtube defaults to survive partial config")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLIPGATE_TWITCH_CLIENT_ID", "env-id")
	t.Setenv("CLIPGATE_SERVER_ADDRESS", ":7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Twitch.ClientID != "env-id" {
		t.Errorf("twitch.client_id = %q, want env-id", cfg.Twitch.ClientID)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("server.address = %q, want :7070", cfg.Server.Address)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"zero retry attempts", func(c *Config) { c.Ingest.Retry.MaxAttempts = 0 }},
		{"max delay below initial", func(c *Config) { c.Ingest.Retry.MaxDelay = time.Millisecond }},
		{"db enabled without dsn", func(c *Config) { c.Database.Enabled = true }},
		{"auth without secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"bad sample rate", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.SampleRate = 2 }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
