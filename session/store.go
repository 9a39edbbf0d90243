package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Store defines persistence operations for the session state.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

// JSONStore persists the session in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed session store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the session from disk or returns an empty one when missing.
func (s *JSONStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save writes the session as indented JSON and creates parent directories.
func (s *JSONStore) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// MemoryStore keeps the session in process only.
type MemoryStore struct {
	state State
}

// Load returns a copy of the held state
func (m *MemoryStore) Load() (*State, error) {
	c := m.state.Clone()
	return &c, nil
}

// Save replaces the held state
func (m *MemoryStore) Save(st *State) error {
	m.state = st.Clone()
	return nil
}
