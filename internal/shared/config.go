package shared

import (
	"bytes"
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
	Credentials CredentialsConfig `toml:"credentials"`
	Generator   GeneratorConfig   `toml:"generator"`
	Resolver    ResolverConfig    `toml:"resolver"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	OpenAI  OpenAIConfig  `toml:"openai"`
	Spotify SpotifyConfig `toml:"spotify"`
}

// OpenAIConfig contains the generative text service settings.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// SpotifyConfig contains Spotify Web API settings.
type SpotifyConfig struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
	Market      string `toml:"market"`
}

// GeneratorConfig bounds recommendation requests.
type GeneratorConfig struct {
	MinCount        int `toml:"min_count"`
	MaxCount        int `toml:"max_count"`
	DefaultCount    int `toml:"default_count"`
	MaxPromptLength int `toml:"max_prompt_length"`
}

// ResolverConfig tunes catalog search behavior.
type ResolverConfig struct {
	Workers        int     `toml:"workers"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the outbound request timeout, defaulting to 15 seconds.
func (r ResolverConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate reports configuration values that cannot work together.
func (c *Config) Validate() error {
	g := c.Generator
	if g.MinCount < 1 {
		return fmt.Errorf("%w: generator.min_count must be at least 1", ErrInvalidConfig)
	}
	if g.MaxCount < g.MinCount {
		return fmt.Errorf("%w: generator.max_count (%d) is below min_count (%d)", ErrInvalidConfig, g.MaxCount, g.MinCount)
	}
	if g.DefaultCount < g.MinCount || g.DefaultCount > g.MaxCount {
		return fmt.Errorf("%w: generator.default_count must be within [%d, %d]", ErrInvalidConfig, g.MinCount, g.MaxCount)
	}
	if g.MaxPromptLength < 1 {
		return fmt.Errorf("%w: generator.max_prompt_length must be positive", ErrInvalidConfig)
	}
	if c.Resolver.Workers < 0 || c.Resolver.RateLimit < 0 {
		return fmt.Errorf("%w: resolver.workers and resolver.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

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

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
