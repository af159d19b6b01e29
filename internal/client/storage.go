package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value   []byte `json:"value"`
	Expires int64  `json:"expires,omitempty"` // unix seconds, 0 never
}

// FileStorage is a fiber.Storage kept in a JSON file.
// An empty path keeps the entries in memory only.
type FileStorage struct {
	mu      sync.Mutex
	path    string
	entries map[string]fileEntry
	now     func() time.Time
}

// NewFileStorage loads path if it exists.
func NewFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{
		path:    path,
		entries: map[string]fileEntry{},
		now:     time.Now,
	}

	if path == "" {
		return fs, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if len(raw) == 0 {
		return fs, nil
	}

	if err = json.Unmarshal(raw, &fs.entries); err != nil {
		return nil, fmt.Errorf("failed to decode session file %s: %w", path, err)
	}

	return fs, nil
}

// Get returns nil for a missing or expired key.
func (fs *FileStorage) Get(key string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	e, ok := fs.entries[key]
	if !ok {
		return nil, nil
	}

	if e.Expires != 0 && fs.now().Unix() >= e.Expires {
		delete(fs.entries, key)

		return nil, fs.flush()
	}

	return e.Value, nil
}

// Set stores val. A zero exp never expires.
func (fs *FileStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	e := fileEntry{Value: append([]byte(nil), val...)}
	if exp > 0 {
		e.Expires = fs.now().Add(exp).Unix()
	}

	fs.entries[key] = e

	return fs.flush()
}

// Delete removes key.
func (fs *FileStorage) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.entries[key]; !ok {
		return nil
	}

	delete(fs.entries, key)

	return fs.flush()
}

// Reset removes all keys.
func (fs *FileStorage) Reset() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.entries = map[string]fileEntry{}

	return fs.flush()
}

// Close is a no-op, every write is already on disk.
func (fs *FileStorage) Close() error {
	return nil
}

// flush rewrites the file through a temp file. Caller holds mu.
func (fs *FileStorage) flush() error {
	if fs.path == "" {
		return nil
	}

	raw, err := json.Marshal(fs.entries)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return os.Rename(tmp, fs.path) //nolint:wrapcheck
}
