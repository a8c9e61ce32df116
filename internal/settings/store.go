package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const (
	stateDirName     = "edugenius"
	settingsFileName = "settings.json"
)

// Store keeps the current Settings and persists every accepted update.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Settings
}

// StateDir returns XDG_STATE_HOME/edugenius or ~/.local/state/edugenius.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, stateDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), stateDirName)
	}
	return filepath.Join(home, ".local", "state", stateDirName)
}

// DefaultPath is the settings file inside StateDir.
func DefaultPath() string {
	return filepath.Join(StateDir(), settingsFileName)
}

// Open loads settings from path. A missing or empty file yields Default().
// An empty path keeps the store in memory only.
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: Default()}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}
	if loaded.Subjects == nil {
		loaded.Subjects = Default().Subjects
	}
	s.current = loaded
	return s, nil
}

// Path returns the backing file, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Current returns the latest settings value.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Update applies fn to the current settings and persists the result. When fn
// or the write fails the previous value stays current.
func (s *Store) Update(fn func(Settings) (Settings, error)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.current.clone())
	if err != nil {
		return s.current.clone(), err
	}
	if err := s.save(next); err != nil {
		return s.current.clone(), err
	}
	s.current = next
	return next.clone(), nil
}

func (s *Store) save(value Settings) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
