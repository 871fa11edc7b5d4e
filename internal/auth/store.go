package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/tunebook/internal/shared"
)

// FileStore persists the session [State] between CLI invocations.
type FileStore struct {
	path string
}

// NewFileStore creates a [FileStore] writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath returns ~/.tunebook/session.json.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tunebook", "session.json")
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the stored state. A missing file yields an empty state.
func (f *FileStore) Load() (State, error) {
	var state State

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return state, nil
}

// Save writes state with owner-only permissions.
func (f *FileStore) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := shared.MarshalJSON(state, true)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Remove deletes the session file. Removing a missing file is not an error.
func (f *FileStore) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
