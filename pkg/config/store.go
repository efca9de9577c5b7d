package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store provides persistence for the application configuration.
type Store struct {
	path string
	mu   sync.RWMutex
	cfg  *Config
}

// NewStore opens the configuration at path. If path is empty it defaults to
// ~/.gridsync/config.json. A missing file is not an error: the defaults are
// written out so the operator has a file to edit.
func NewStore(path string) (*Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".gridsync", "config.json")
	}

	store := &Store{
		path: path,
		cfg:  Default(),
	}

	if err := store.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		if err := store.Save(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Config returns the current configuration.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Load reads the configuration from disk, replacing the in-memory state.
// Fields absent from the file keep their defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	s.cfg = cfg
	return nil
}

// Save writes the configuration to disk, creating the directory if needed.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// StorePath resolves the dataset database location: the configured path if
// set, otherwise records.db next to the config file.
func (s *Store) StorePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg.Data.StorePath != "" {
		return s.cfg.Data.StorePath
	}
	return filepath.Join(filepath.Dir(s.path), "records.db")
}
