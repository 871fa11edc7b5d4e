package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tunebook.db" {
			t.Errorf("expected database path ./tunebook.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Auth.Provider != "local" {
			t.Errorf("expected local auth provider, got %s", config.Auth.Provider)
		}

		if config.YouTube.Enabled() {
			t.Error("expected enrichment to be disabled without an API key")
		}

		if config.YouTube.Timeout() != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", config.YouTube.Timeout())
		}

		if config.YouTube.CacheTTL() != time.Hour {
			t.Errorf("expected 1h cache ttl, got %v", config.YouTube.CacheTTL())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Server.Port != defaultConfig.Server.Port {
			t.Errorf("created config server port doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[auth]
provider = "remote"
url = "https://auth.example.com/auth/v1"

[youtube]
api_key = "test_api_key"
workers = 2
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.YouTube.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", config.YouTube.Workers)
		}

		if config.Library.Locale != "en" {
			t.Errorf("expected unset keys to keep defaults, got locale %q", config.Library.Locale)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected remote config to validate, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"YOUTUBE_API_KEY":         "fallback-key",
			"TUNEBOOK_SESSION_SECRET": "s3cret",
		}
		lookup := func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}

		config := DefaultConfig()
		config.ApplyEnv(lookup)

		if config.YouTube.APIKey != "fallback-key" {
			t.Errorf("expected YOUTUBE_API_KEY fallback, got %q", config.YouTube.APIKey)
		}
		if config.Server.SessionSecret != "s3cret" {
			t.Errorf("expected session secret override, got %q", config.Server.SessionSecret)
		}

		env["TUNEBOOK_YOUTUBE_API_KEY"] = "primary-key"
		config.ApplyEnv(lookup)
		if config.YouTube.APIKey != "primary-key" {
			t.Errorf("expected TUNEBOOK_YOUTUBE_API_KEY to win, got %q", config.YouTube.APIKey)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Auth.Provider = "remote"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for remote without url, got %v", err)
		}

		config.Auth.Provider = "ldap"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for unknown provider, got %v", err)
		}
	})
}
