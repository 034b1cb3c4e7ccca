// Package store provides a file-backed key-value store for query input data,
// with a watcher that reports external modifications so cached computations
// depending on a key can be invalidated.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liquers/liquers-go/internal/errors"
)

// Store reads and writes opaque byte blobs under a root directory. Keys are
// relative file paths; nested keys ("data/report.csv") are allowed but may
// not escape the root.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: root directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: creating root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// path validates a key and resolves it under the root.
func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("store: empty key")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("store: key %q escapes the store root", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Get returns the data stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewStoreError("get", key, errors.ErrKeyNotFound)
		}
		return nil, errors.NewStoreError("get", key, err)
	}
	return data, nil
}

// Set stores data under key, creating parent directories as needed.
func (s *Store) Set(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errors.NewStoreError("set", key, err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return errors.NewStoreError("set", key, err)
	}
	return nil
}

// Remove deletes the data under key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.NewStoreError("remove", key, err)
	}
	return nil
}

// Contains reports whether a key exists in the store.
func (s *Store) Contains(key string) bool {
	p, err := s.path(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Keys returns all keys in the store, sorted, using forward slashes.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: listing keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
