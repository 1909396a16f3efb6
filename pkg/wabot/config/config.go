// Package config loads bot configuration from the environment and an
// optional YAML file.
//
// Priority for resolving secrets:
//  1. OS keyring (most secure — encrypted by the OS)
//  2. Environment variable (loaded after godotenv reads .env)
//  3. config.yaml value (least secure — plaintext on disk)
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the full bot configuration. Missing non-essential credentials
// (AI, image search) degrade the matching commands instead of failing startup.
type Config struct {
	// Port for the health check HTTP server.
	Port int `env:"PORT" yaml:"port"`

	// OwnerJID is the operator identity with elevated command access,
	// e.g. "263718456744@s.whatsapp.net".
	OwnerJID string `env:"OWNER_NUMBER" yaml:"owner"`

	// GeminiKey enables the !ai / !chat commands.
	GeminiKey string `env:"GOOGLE_AI_KEY" yaml:"gemini_key"`

	// UnsplashKey enables the !img command.
	UnsplashKey string `env:"UNSPLASH_ACCESS_KEY" yaml:"unsplash_key"`

	// AuthDir holds the WhatsApp session credential store.
	AuthDir string `env:"AUTH_DIR" yaml:"auth_dir"`

	// TempDir holds in-flight download artifacts.
	TempDir string `env:"TEMP_DIR" yaml:"temp_dir"`

	Logging Logging `yaml:"logging"`
}

// Logging controls the slog handler.
type Logging struct {
	Level  string `env:"LOG_LEVEL" yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:    3000,
		AuthDir: "./auth",
		TempDir: "./temp",
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load builds the configuration in increasing precedence: built-in defaults,
// then the YAML file, then the environment (after godotenv reads .env), with
// a keyring fallback for the AI key. path may be empty (auto-discovery).
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Environment wins over the file; unset variables leave fields alone.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.GeminiKey == "" {
		cfg.GeminiKey = geminiKeyFromKeyring()
	}

	return cfg, nil
}

// overlayFile parses a YAML config file over the current values.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}
	return nil
}

// SaveToFile writes a Config as YAML to the specified path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FindConfigFile searches for config files in standard locations.
// Returns the path of the first found, or empty string.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"wabot.yaml",
		"wabot.yml",
		"configs/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
