// pkg/xdg/xdg.go

package xdg

import (
	"os"
	"path/filepath"
)

// DirPermStandard is the mode for config directories holding secrets.
const DirPermStandard = 0o700

func getEnvOrDefault(envVar, fallback string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return fallback
}

// ConfigPath returns the XDG config location for an app file, honoring
// XDG_CONFIG_HOME with the ~/.config fallback.
func ConfigPath(app, file string) string {
	base := getEnvOrDefault("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config"))
	return filepath.Join(base, app, file)
}

// EnsureDir creates the parent directory of path if it is missing.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), DirPermStandard)
}
