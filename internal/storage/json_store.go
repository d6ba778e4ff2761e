package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type jsonFile struct {
	Version int                        `json:"version"`
	Blobs   map[string]json.RawMessage `json:"blobs"`
}

// JSONStore keeps all blobs in a single human-readable JSON file. Useful
// for debugging and for environments without SQLite support.
type JSONStore struct {
	path string
	file *jsonFile
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.file = &jsonFile{
		Version: 1,
		Blobs:   make(map[string]json.RawMessage),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.file = &jsonFile{}
	if err := json.Unmarshal(data, s.file); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.file.Blobs == nil {
		s.file.Blobs = make(map[string]json.RawMessage)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Get(key string) ([]byte, error) {
	if s.file == nil {
		return nil, ErrNotInitialized
	}
	blob, ok := s.file.Blobs[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return blob, nil
}

func (s *JSONStore) Put(key string, value []byte) error {
	if s.file == nil {
		return ErrNotInitialized
	}
	if !json.Valid(value) {
		return fmt.Errorf("blob for key %q is not valid JSON", key)
	}
	s.file.Blobs[key] = json.RawMessage(value)
	return s.save()
}

func (s *JSONStore) Delete(key string) error {
	if s.file == nil {
		return ErrNotInitialized
	}
	delete(s.file.Blobs, key)
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}
