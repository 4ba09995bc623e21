// Package credstore owns durable storage of the opaque authentication token.
// Nothing else in the application persists credentials; the API client reads
// the token fresh on every request and clears it on session invalidation.
package credstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists a single opaque bearer token.
type Store interface {
	// Save replaces the stored token.
	Save(token string) error
	// Read returns the stored token, or the empty string when absent.
	Read() (string, error)
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// FileStore keeps the token in a 0600 file so it survives process restarts.
type FileStore struct {
	path string
}

// NewFileStore builds a store backed by the given file path.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credstore: path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credstore: token is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	// Write-then-rename keeps a concurrent Read from observing a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// A missing or unreadable file degrades to "not authenticated".
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	token string
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
