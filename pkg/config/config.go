package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/valkyriedb/bloblog/pkg/bloblog"
)

// Config holds blobwalk's defaults. Every field can be overridden per
// invocation with flags; the file just keeps operators from retyping them.
type Config struct {
	ReadLevel    string `yaml:"read_level"`    // headers | keys | full
	Recovery     string `yaml:"recovery"`      // strict | tolerant
	PreviewBytes int    `yaml:"preview_bytes"` // blob bytes shown per record by dump
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ReadLevel:    "headers",
		Recovery:     "strict",
		PreviewBytes: 32,
	}
}

// LoadConfig loads configuration from the specified path.
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

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path.
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ParseReadLevel maps a config/flag value to a read level.
func ParseReadLevel(s string) (bloblog.ReadLevel, error) {
	switch s {
	case "headers":
		return bloblog.ReadLevelHeaderFooter, nil
	case "keys":
		return bloblog.ReadLevelHeaderFooterKey, nil
	case "full":
		return bloblog.ReadLevelHeaderFooterKeyBlob, nil
	default:
		return 0, fmt.Errorf("unknown read level %q (want headers, keys, or full)", s)
	}
}

// ParseRecoveryMode maps a config/flag value to a recovery mode.
func ParseRecoveryMode(s string) (bloblog.RecoveryMode, error) {
	switch s {
	case "strict":
		return bloblog.RecoveryStrict, nil
	case "tolerant":
		return bloblog.RecoveryTolerant, nil
	default:
		return 0, fmt.Errorf("unknown recovery mode %q (want strict or tolerant)", s)
	}
}

// GetDefaultConfigPath returns the default configuration path for the
// current platform.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./blobwalk.yaml"
	}
	return filepath.Join(homeDir, ".config", "blobwalk", "config.yaml")
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
