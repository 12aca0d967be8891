package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"pantry-chef/internal/logging"
	"pantry-chef/internal/userstate"
)

// JSONStore provides file-based storage for the user state.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a JSONStore and ensures the parent directory exists.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", filepath.Dir(path), err)
	}
	return &JSONStore{path: path}, nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// Read loads the state. A missing or unreadable file is replaced with defaults.
func (s *JSONStore) Read(_ context.Context) (userstate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.reset()
	}
	if err != nil {
		return userstate.State{}, fmt.Errorf("failed to read user state file: %w", err)
	}

	var state userstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("User state file is corrupt, resetting to defaults")
		return s.reset()
	}
	return state.Normalized(), nil
}

// Write replaces the file atomically.
func (s *JSONStore) Write(_ context.Context, state userstate.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(state)
}

func (s *JSONStore) reset() (userstate.State, error) {
	state := userstate.Default()
	if err := s.write(state); err != nil {
		return userstate.State{}, err
	}
	return state, nil
}

func (s *JSONStore) write(state userstate.State) error {
	data, err := json.MarshalIndent(state.Normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".user-data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close user state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace user state file: %w", err)
	}
	return nil
}
