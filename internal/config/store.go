package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const configFile = "config.json"

type sharedStore struct {
	path string
	mu   sync.RWMutex
}

// NewSharedStore creates the shared config store in the platform config directory
func NewSharedStore() (Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, configFile))
}

// NewStoreAt creates a config store backed by the file at path
func NewStoreAt(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &sharedStore{path: path}, nil
}

func (s *sharedStore) Load() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := &Config{
		IgnorePorts:     []int{},
		IgnoreProcesses: []string{},
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *sharedStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shared := *cfg
	// Ensure non-nil slices for clean JSON
	if shared.IgnorePorts == nil {
		shared.IgnorePorts = []int{}
	}
	if shared.IgnoreProcesses == nil {
		shared.IgnoreProcesses = []string{}
	}

	data, err := json.MarshalIndent(shared, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
