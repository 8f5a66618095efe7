// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all driftworld configuration.
type Config struct {
	// HTTP listen port.
	Port int `yaml:"port"`

	// DeepSeek API key; empty disables LLM features (fallbacks apply).
	DeepSeekAPIKey string `yaml:"deepseek_api_key"`

	// Journal sqlite path.
	JournalPath string `yaml:"journal_path"`

	// Save slot root directory.
	SavesDir string `yaml:"saves_dir"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:        3000,
		JournalPath: "data/driftworld.db",
		SavesDir:    "saves",
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path (missing file returns defaults) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		c.DeepSeekAPIKey = key
	}
	if path := os.Getenv("DRIFTWORLD_JOURNAL"); path != "" {
		c.JournalPath = path
	}
	if dir := os.Getenv("DRIFTWORLD_SAVES"); dir != "" {
		c.SavesDir = dir
	}
	if lvl := os.Getenv("DRIFTWORLD_LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
}
