// Package config handles loading and saving user settings for Quartet.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds all user configuration.
type Settings struct {
	// Handle is the player name shown on the local leaderboard.
	Handle string `yaml:"handle"`
	// Subscribed unlocks the archive. The core trusts this flag; billing
	// lives elsewhere.
	Subscribed bool `yaml:"subscribed"`
	// HardMode enables the Mini countdown and disables assists.
	HardMode bool `yaml:"hard_mode"`
	// DataDir overrides where the progress database lives.
	DataDir string `yaml:"data_dir,omitempty"`
	// CatalogURL points at the remote puzzle catalog.
	CatalogURL string `yaml:"catalog_url,omitempty"`
	// PackPath is an optional local puzzle pack for offline play.
	PackPath string `yaml:"pack_path,omitempty"`
}

// DefaultCatalogURL is used when settings carry none.
const DefaultCatalogURL = "https://catalog.quartet.games"

// Load reads settings from a YAML file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Settings{CatalogURL: DefaultCatalogURL}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	if settings.CatalogURL == "" {
		settings.CatalogURL = DefaultCatalogURL
	}
	return &settings, nil
}

// Save writes settings to a YAML file.
func Save(path string, settings *Settings) error {
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quartet"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// SettingsPath is the default settings file location.
func SettingsPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// DataPath resolves the progress database location, honoring DataDir.
func (s *Settings) DataPath() (string, error) {
	dir := s.DataDir
	if dir == "" {
		configDir, err := EnsureConfigDir()
		if err != nil {
			return "", err
		}
		dir = configDir
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "progress.db"), nil
}
