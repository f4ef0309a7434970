//go:build darwin

package config

import (
	"os"
	"path/filepath"

	"howett.net/plist"
)

const (
	sharedDir = ".portkill"
	plistPath = "Library/Preferences/com.portkill.app.plist"
)

// configDir keeps the CLI config next to the desktop app's at ~/.portkill
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, sharedDir), nil
}

// loadFromPlist migrates the ignore lists from the desktop app's preferences
func loadFromPlist() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(home, plistPath))
	if err != nil {
		return nil
	}

	return parsePlist(data)
}

func parsePlist(data []byte) *Config {
	var prefs struct {
		IgnorePorts     []interface{} `plist:"ignorePorts"`
		IgnoreProcesses []string      `plist:"ignoreProcesses"`
	}
	if _, err := plist.Unmarshal(data, &prefs); err != nil {
		return nil
	}

	cfg := &Config{
		IgnorePorts:     []int{},
		IgnoreProcesses: prefs.IgnoreProcesses,
	}

	// Integers decode as uint64 or int64 depending on how the app wrote them
	for _, item := range prefs.IgnorePorts {
		switch v := item.(type) {
		case uint64:
			cfg.IgnorePorts = append(cfg.IgnorePorts, int(v))
		case int64:
			cfg.IgnorePorts = append(cfg.IgnorePorts, int(v))
		}
	}

	return cfg
}
