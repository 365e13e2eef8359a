package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/rhythm.yaml
var defaultYAML []byte

// Default returns the built-in settings.
func Default() Settings {
	var cfg Settings
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		// The embedded file is part of the build; fall back to zero
		// values pushed through normalize if it ever breaks.
		cfg = Settings{}
	}
	cfg.normalize()
	return cfg
}

// Load loads settings.
// Search order: customPath -> ~/.rhythm/config.yaml -> ./rhythm.yaml -> embedded default
func Load(customPath string) (Settings, error) {
	var cfg Settings

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.normalize()
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				cfg.normalize()
				return cfg, nil
			}
		}
	}

	// Try working directory
	if data, err := os.ReadFile("rhythm.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			cfg.normalize()
			return cfg, nil
		}
	}

	return Default(), nil
}

// userConfigPath returns the path to a user config file, or empty if home
// is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rhythm", filename)
}

// ExpandHome resolves a leading ~ against the home directory. Paths
// without one pass through unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
