// Package config resolves runtime settings from an optional YAML file at
// ~/.config/shelfmark/config.yaml, overridden by SHELFMARK_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDBPath is where learned state is persisted when nothing else is
// configured.
const DefaultDBPath = "~/.local/share/shelfmark/state.db"

// Config holds the resolved settings.
type Config struct {
	// DBPath is the SQLite state database. Empty disables persistence.
	DBPath string `yaml:"db_path"`
	// RootFolder overrides the default folder syncs run under.
	RootFolder string `yaml:"root_folder"`
}

// Path returns the config file location, honoring XDG_CONFIG_HOME.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shelfmark", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "shelfmark", "config.yaml")
}

// Load reads the config file if present and applies environment overrides.
// A missing file is not an error.
func Load() (Config, error) {
	cfg := Config{DBPath: DefaultDBPath}

	if path := Path(); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if env := os.Getenv("SHELFMARK_DB"); env != "" {
		cfg.DBPath = env
	}
	if env := os.Getenv("SHELFMARK_ROOT_FOLDER"); env != "" {
		cfg.RootFolder = env
	}
	return cfg, nil
}
