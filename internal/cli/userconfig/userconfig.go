package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "savora"
	configFileName = "config.json"

	// DefaultAPIURL is used when no configuration exists
	DefaultAPIURL = "http://localhost:3000/api"

	// EnvAPIURL overrides the configured API URL when set
	EnvAPIURL = "SAVORA_API_URL"
)

// UserConfig represents the user's local configuration stored in
// ~/.config/savora/config.json
type UserConfig struct {
	APIURL string `json:"api_url"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetAPIURL updates the API URL and saves the config
func SetAPIURL(url string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIURL = url
	return Save(cfg)
}

// ResolveAPIURL returns the API URL to use: the SAVORA_API_URL environment
// variable when set, then the configured value, then the default.
func ResolveAPIURL() (string, error) {
	if url := os.Getenv(EnvAPIURL); url != "" {
		return url, nil
	}

	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.APIURL != "" {
		return cfg.APIURL, nil
	}

	return DefaultAPIURL, nil
}
