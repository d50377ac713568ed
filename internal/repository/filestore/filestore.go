// Package filestore keeps the slots in a single JSON document on disk.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"sticky-wall/internal/errors"
	"sticky-wall/internal/repository"
)

const filePerms = 0o600

// Store is a repository.Repository backed by one JSON file. Every write
// replaces the file atomically, so a crash leaves either the old or the new
// document.
type Store struct {
	mu    sync.RWMutex
	path  string
	slots map[string]string
}

var _ repository.Repository = (*Store)(nil)

// Open loads path, creating its directory when needed. A missing file is an
// empty store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.NewStorageError("create store directory", err)
	}

	s := &Store{path: path, slots: map[string]string{}}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, errors.NewStorageError("read store file", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.slots); err != nil {
		return nil, errors.NewStorageError("decode store file", err)
	}
	if s.slots == nil {
		s.slots = map[string]string{}
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	if !ok {
		return "", errors.NewNotFoundError("slot", key)
	}
	return v, nil
}

func (s *Store) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.slots[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return s.update(func(next map[string]string) {
		for k, v := range values {
			next[k] = v
		}
	})
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.update(func(next map[string]string) {
		for _, k := range keys {
			delete(next, k)
		}
	})
}

func (s *Store) Close() error {
	return nil
}

// update applies fn to a copy of the slots and commits the copy only once the
// file has been replaced.
func (s *Store) update(fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.slots))
	for k, v := range s.slots {
		next[k] = v
	}
	fn(next)

	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return errors.NewStorageError("encode store file", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		return errors.NewStorageError("write store file", err)
	}
	// atomic.WriteFile does not set permissions on new files.
	if err := os.Chmod(s.path, filePerms); err != nil {
		return errors.NewStorageError("set store file permissions", err)
	}

	s.slots = next
	return nil
}
