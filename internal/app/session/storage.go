package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Well-known persisted keys
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeySession      = "session"
)

// Storage is a small string key/value store that survives restarts
// (the portal's equivalent of browser local storage)
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(keys ...string) error
}

// FileStorage persists keys as a single JSON object on disk
type FileStorage struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileStorage opens (or creates) the storage file at path
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fs := &FileStorage{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(raw) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrStorageCorrupt, path, err)
	}
	return fs, nil
}

// Get returns the value stored under key
func (fs *FileStorage) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.data[key]
	return v, ok
}

// Set stores value under key and flushes to disk
func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data[key] = value
	return fs.flush()
}

// Remove deletes keys and flushes to disk. Missing keys are ignored.
func (fs *FileStorage) Remove(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := fs.data[k]; ok {
			delete(fs.data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return fs.flush()
}

// flush writes atomically via a temp file; caller holds mu
func (fs *FileStorage) flush() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

// MemoryStorage keeps keys in process memory only
type MemoryStorage struct {
	items *cache.Cache
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: cache.New(cache.NoExpiration, 0)}
}

// Get returns the value stored under key
func (ms *MemoryStorage) Get(key string) (string, bool) {
	v, ok := ms.items.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key
func (ms *MemoryStorage) Set(key, value string) error {
	ms.items.Set(key, value, cache.NoExpiration)
	return nil
}

// Remove deletes keys
func (ms *MemoryStorage) Remove(keys ...string) error {
	for _, k := range keys {
		ms.items.Delete(k)
	}
	return nil
}
