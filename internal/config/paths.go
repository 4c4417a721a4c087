// ABOUTME: Standard filesystem paths for detach configuration
// ABOUTME: Resolves $XDG_CONFIG_HOME/detach/ with ~/.config/detach/ as fallback

package config

import (
	"os"
	"path/filepath"
)

const configDirName = "detach"

// ConfigDir returns the user config directory for detach.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+configDirName)
	}
	return filepath.Join(home, ".config", configDirName)
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
