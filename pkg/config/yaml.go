package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file. Environment
// overrides are applied after the file so NASDATE_* variables win.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600: the file may hold share credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "nasdate", "config.yaml"), nil
}

// LoadDefault attempts to load configuration from the default location.
// If the file doesn't exist, returns the default configuration with
// environment overrides applied.
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	return LoadFromFile(path)
}

// applyEnvOverrides lets NASDATE_* variables override file values, so
// credentials need not live in the config file at all
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NASDATE_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("NASDATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NASDATE_SHARE"); v != "" {
		cfg.Server.Share = v
	}
	if v := os.Getenv("NASDATE_DOMAIN"); v != "" {
		cfg.Server.Domain = v
	}
	if v := os.Getenv("NASDATE_USERNAME"); v != "" {
		cfg.Server.Username = v
	}
	if v := os.Getenv("NASDATE_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}
	if v := os.Getenv("NASDATE_BASE_PATH"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := os.Getenv("NASDATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
