package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns the default config file and data directory.
// Lookup order, first match wins:
//   - config_path: VIDEOFLOW_CONFIG_PATH, $XDG_CONFIG_HOME/videoflow.toml, ~/.config/videoflow.toml
//   - base_dir: VIDEOFLOW_HOME, $XDG_DATA_HOME/videoflow, ~/.local/share/videoflow
func GetDefaults() (map[string]string, error) {
	configPath, err := lookupPath("VIDEOFLOW_CONFIG_PATH", "XDG_CONFIG_HOME", "videoflow.toml", ".config")
	if err != nil {
		return nil, err
	}
	baseDir, err := lookupPath("VIDEOFLOW_HOME", "XDG_DATA_HOME", "videoflow", ".local", "share")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// lookupPath returns $override, else $xdgVar/leaf, else ~/<homeParts...>/leaf.
func lookupPath(override, xdgVar, leaf string, homeParts ...string) (string, error) {
	if p := os.Getenv(override); p != "" {
		return p, nil
	}
	if dir := os.Getenv(xdgVar); dir != "" && filepath.IsAbs(dir) {
		return filepath.Join(dir, leaf), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	parts := append([]string{homeDir}, homeParts...)
	return filepath.Join(append(parts, leaf)...), nil
}
