// Package paths resolves the on-disk locations cinepost uses for its
// config file, poster cache and logs. Everything lives under the user's
// config directory (~/.config/cinepost on Linux).
package paths

import (
	"os"
	"path/filepath"
)

// UserConfigDir returns the base config directory for the current user.
// XDG_CONFIG_HOME is honored when set.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// CinepostDir returns the cinepost config directory.
// This is ~/.config/cinepost for the current user.
func CinepostDir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cinepost"), nil
}

// ConfigPath returns the path to the cinepost config file.
// This is ~/.config/cinepost/config.toml.
func ConfigPath() (string, error) {
	dir, err := CinepostDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CachePath returns the path to the poster cache database.
// This is ~/.config/cinepost/posters.db.
func CachePath() (string, error) {
	dir, err := CinepostDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "posters.db"), nil
}

// LogPath returns the default log file path.
// This is ~/.config/cinepost/logs/cinepost.log.
func LogPath() (string, error) {
	dir, err := CinepostDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "cinepost.log"), nil
}

// RulesPath returns the path to the optional parser rules file.
// This is ~/.config/cinepost/parser_rules.txt.
func RulesPath() (string, error) {
	dir, err := CinepostDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "parser_rules.txt"), nil
}
