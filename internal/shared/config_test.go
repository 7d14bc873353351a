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

		if config.Database.Path != "./tunesmith.db" {
			t.Errorf("expected database path ./tunesmith.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8000 {
			t.Errorf("expected server port 8000, got %d", config.Server.Port)
		}

		if config.Credentials.OpenAI.Model != "gpt-4o" {
			t.Errorf("expected model gpt-4o, got %s", config.Credentials.OpenAI.Model)
		}

		if config.Credentials.Spotify.Market != "US" {
			t.Errorf("expected market US, got %s", config.Credentials.Spotify.Market)
		}

		if config.Generator.MinCount != 1 || config.Generator.MaxCount != 25 {
			t.Errorf("expected count bounds [1, 25], got [%d, %d]", config.Generator.MinCount, config.Generator.MaxCount)
		}

		if config.Generator.MaxPromptLength != 200 {
			t.Errorf("expected max prompt length 200, got %d", config.Generator.MaxPromptLength)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
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
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.openai]
api_key = "sk-test"
model = "gpt-4o-mini"

[credentials.spotify]
access_token = "spotify-token"
market = "GB"

[generator]
max_count = 10

[resolver]
workers = 4
rate_limit = 2.5
timeout_seconds = 3

[server]
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.OpenAI.APIKey != "sk-test" {
			t.Errorf("expected api key sk-test, got %s", config.Credentials.OpenAI.APIKey)
		}
		if config.Credentials.OpenAI.BaseURL != "https://api.openai.com/v1" {
			t.Errorf("expected default base url to survive partial config, got %s", config.Credentials.OpenAI.BaseURL)
		}
		if config.Credentials.Spotify.Market != "GB" {
			t.Errorf("expected market GB, got %s", config.Credentials.Spotify.Market)
		}
		if config.Generator.MaxCount != 10 || config.Generator.MinCount != 1 {
			t.Errorf("expected count bounds [1, 10], got [%d, %d]", config.Generator.MinCount, config.Generator.MaxCount)
		}
		if config.Resolver.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Resolver.Workers)
		}
		if config.Resolver.Timeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.Resolver.Timeout())
		}
		if config.Server.Addr() != "127.0.0.1:9090" {
			t.Errorf("expected addr 127.0.0.1:9090, got %s", config.Server.Addr())
		}
	})

	t.Run("LoadConfig Invalid Bounds", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		data := "[generator]\nmin_count = 5\nmax_count = 2\n"
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.AccessToken = "saved-token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.Spotify.AccessToken != "saved-token" {
			t.Errorf("expected saved token, got %q", loaded.Credentials.Spotify.AccessToken)
		}
	})

	t.Run("Timeout Default", func(t *testing.T) {
		if got := (ResolverConfig{}).Timeout(); got != 15*time.Second {
			t.Errorf("expected 15s default timeout, got %v", got)
		}
	})
}
