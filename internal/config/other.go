//go:build !darwin

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

func configDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	default: // linux and others
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(dir, "portkill"), nil
}

// loadFromPlist is a no-op on non-darwin platforms
func loadFromPlist() *Config {
	return nil
}
