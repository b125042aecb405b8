/*
 * Package store implements the flat key-value cache that survives client
 * restarts. Each key occupies a single slot backed by one JSON file in the
 * config directory; every Put overwrites the previous value wholesale.
 */
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supportportal/portal-client/pkg/debug"
)

const (
	// KeyUsers holds the last fetched user collection
	KeyUsers = "users"
	// KeyUser holds the session user record
	KeyUser = "user"
	// KeyToken holds the session JWT
	KeyToken = "token"

	filePerms = 0600
)

// ErrNotFound is returned by Get when the key was never set or is empty
var ErrNotFound = errors.New("key not found in cache")

// Store persists JSON-serialized values under string keys
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Put serializes value and persists it under key, replacing any previous value
func (s *Store) Put(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value for key %q: %w", key, err)
	}

	path := s.path(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, filePerms); err != nil {
		debug.Error("Failed to write cache file %s: %v", tmpPath, err)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	debug.Debug("Cached %d bytes under key %q", len(data), key)
	return nil
}

// Get deserializes the value stored under key into out. Returns ErrNotFound
// if the key was never set or holds no data.
func (s *Store) Get(key string, out interface{}) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return ErrNotFound
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to deserialize value for key %q: %w", key, err)
	}
	return nil
}

// Has reports whether key holds a value
func (s *Store) Has(key string) bool {
	info, err := os.Stat(s.path(key))
	return err == nil && info.Size() > 0
}

// Delete removes the value stored under key. Deleting an absent key is not
// an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache key %q: %w", key, err)
	}
	return nil
}
