package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Library  LibraryConfig  `toml:"library"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	SessionSecret   string `toml:"session_secret"`
	RedirectDelayMS int    `toml:"redirect_delay_ms"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig selects and configures the identity provider.
type AuthConfig struct {
	Provider        string `toml:"provider"`
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	SessionTTLHours int    `toml:"session_ttl_hours"`
}

// SessionTTL returns the lifetime of locally issued sessions.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	Workers         int     `toml:"workers"`
	RateLimit       float64 `toml:"rate_limit"`
	CacheSizeMB     int     `toml:"cache_size_mb"`
	CacheTTLSeconds int     `toml:"cache_ttl_seconds"`
}

// Enabled reports whether an API key is configured.
func (y YouTubeConfig) Enabled() bool {
	return y.APIKey != ""
}

// Timeout returns the per-request timeout for video lookups.
func (y YouTubeConfig) Timeout() time.Duration {
	if y.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(y.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched video metadata is kept.
func (y YouTubeConfig) CacheTTL() time.Duration {
	if y.CacheTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(y.CacheTTLSeconds) * time.Second
}

// LibraryConfig contains presentation settings for tune listings.
type LibraryConfig struct {
	Locale string `toml:"locale"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays secrets and deployment settings from the environment.
//
// lookup has the signature of [os.LookupEnv] so tests can supply a map.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.YouTube.APIKey, "TUNEBOOK_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")
	set(&c.Auth.URL, "TUNEBOOK_AUTH_URL")
	set(&c.Auth.APIKey, "TUNEBOOK_AUTH_API_KEY")
	set(&c.Server.SessionSecret, "TUNEBOOK_SESSION_SECRET")
	set(&c.Database.Path, "TUNEBOOK_DATABASE_PATH")
}

// Validate checks cross-field constraints that TOML decoding cannot express.
func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case "", "local":
	case "remote":
		if c.Auth.URL == "" {
			return fmt.Errorf("%w: auth.url is required for the remote provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth provider %q", ErrInvalidConfig, c.Auth.Provider)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	return nil
}
