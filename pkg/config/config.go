/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/filecabinet/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Log formats
const (
	LogFormatLogfmt = "logfmt"
	LogFormatJSON   = "json"
)

// Config represents the file cabinet configuration
type Config struct {
	DataFile   string     `yaml:"data_file"`
	Validation Validation `yaml:"validation"`
	Storage    Storage    `yaml:"storage"`
	Logging    Logging    `yaml:"logging"`
	API        API        `yaml:"api"`
	Output     Output     `yaml:"output"`
}

// Validation selects the validation rules
type Validation struct {
	Rules     string               `yaml:"rules"`
	Overrides validation.Overrides `yaml:"overrides,omitempty"`
}

// Storage contains data file options
type Storage struct {
	SyncWrites bool `yaml:"sync_writes"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// API contains REST server configuration
type API struct {
	Port   int    `yaml:"port"`
	Bind   string `yaml:"bind"`
	APIKey string `yaml:"api_key"`
}

// Output contains CLI output configuration
type Output struct {
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataFile: "./data/cabinet.db",
		Validation: Validation{
			Rules: validation.PolicyDefault,
		},
		Logging: Logging{
			Level:  "info",
			Format: LogFormatLogfmt,
		},
		API: API{
			Port:   8080,
			Bind:   "127.0.0.1",
			APIKey: "auto",
		},
		Output: Output{
			Format: OutputTable,
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case LogFormatLogfmt, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	switch strings.ToLower(c.Output.Format) {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api port %d out of range", c.API.Port)
	}
	return nil
}

// Policy builds the configured validation policy
func (c *Config) Policy() (*validation.Policy, error) {
	return validation.ByNameWithOverrides(c.Validation.Rules, c.Validation.Overrides)
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
func BootstrapConfig(configPath string, dataFile string) (*Config, error) {
	config := DefaultConfig()
	if dataFile != "" {
		config.DataFile = dataFile
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.API.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./filecabinet.yaml"
	}

	// For Linux/macOS, use ~/.config/filecabinet/config.yaml
	configDir := filepath.Join(homeDir, ".config", "filecabinet")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
