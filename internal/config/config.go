package config

import (
	"slices"

	"github.com/productdevbook/port-kill/internal/ignore"
)

// Config holds the persisted preferences shared with the desktop app
type Config struct {
	IgnorePorts     []int    `json:"ignorePorts" plist:"ignorePorts"`
	IgnoreProcesses []string `json:"ignoreProcesses" plist:"ignoreProcesses"`
}

// Store interface for config persistence
type Store interface {
	Load() (*Config, error)
	Save(cfg *Config) error
}

// NewStore returns the shared config store
func NewStore() Store {
	store, err := NewSharedStore()
	if err != nil {
		// Fallback: return a store that will return empty config
		return &fallbackStore{}
	}

	// Migrate from plist if shared config is empty
	cfg, err := store.Load()
	if err == nil && cfg.empty() {
		if plistCfg := loadFromPlist(); plistCfg != nil && !plistCfg.empty() {
			_ = store.Save(plistCfg)
		}
	}

	return store
}

type fallbackStore struct{}

func (f *fallbackStore) Load() (*Config, error) {
	return &Config{IgnorePorts: []int{}, IgnoreProcesses: []string{}}, nil
}

func (f *fallbackStore) Save(cfg *Config) error {
	return nil
}

func (c *Config) empty() bool {
	return len(c.IgnorePorts) == 0 && len(c.IgnoreProcesses) == 0
}

// IsIgnoredPort checks if a port is ignored
func (c *Config) IsIgnoredPort(port int) bool {
	return slices.Contains(c.IgnorePorts, port)
}

// IsIgnoredProcess checks if a process name is ignored
func (c *Config) IsIgnoredProcess(name string) bool {
	return slices.Contains(c.IgnoreProcesses, name)
}

// AddIgnoredPort adds a port to the ignore list
func (c *Config) AddIgnoredPort(port int) {
	if !c.IsIgnoredPort(port) {
		c.IgnorePorts = append(c.IgnorePorts, port)
	}
}

// RemoveIgnoredPort removes a port from the ignore list
func (c *Config) RemoveIgnoredPort(port int) {
	c.IgnorePorts = slices.DeleteFunc(c.IgnorePorts, func(p int) bool { return p == port })
}

// AddIgnoredProcess adds a process name to the ignore list
func (c *Config) AddIgnoredProcess(name string) {
	if !c.IsIgnoredProcess(name) {
		c.IgnoreProcesses = append(c.IgnoreProcesses, name)
	}
}

// RemoveIgnoredProcess removes a process name from the ignore list
func (c *Config) RemoveIgnoredProcess(name string) {
	c.IgnoreProcesses = slices.DeleteFunc(c.IgnoreProcesses, func(n string) bool { return n == name })
}

// Ignore converts the stored lists to an ignore.Config. Out of range ports are dropped.
func (c *Config) Ignore() ignore.Config {
	ports := make([]uint16, 0, len(c.IgnorePorts))
	for _, p := range c.IgnorePorts {
		if p > 0 && p <= 65535 {
			ports = append(ports, uint16(p))
		}
	}
	return ignore.New(ports, c.IgnoreProcesses)
}
