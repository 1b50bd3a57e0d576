package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a small durable key-value surface, the embedder-side equivalent of
// the browser's localStorage/cookie pair. Implementations must degrade, not
// fail: cart usage continues for the process lifetime even when persistence
// is gone.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore persists keys as a single JSON file.
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// NewFileStore loads (or lazily creates) the backing file.
// Load errors are logged and leave an empty in-memory map.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path: strings.TrimSpace(path),
		data: map[string]string{},
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[storage] WARN: read %s failed: %v (starting empty)", s.path, err)
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Printf("[storage] WARN: decode %s failed: %v (starting empty)", s.path, err)
		s.data = map[string]string{}
	}
	return s
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// MemStore is a volatile Store (sessionStorage equivalent; also the fallback
// when no writable location exists).
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Layered reads in priority order and writes to every layer for redundancy
// (the original stores the session id in localStorage, sessionStorage and a
// cookie at once).
type Layered struct {
	layers []Store
}

func NewLayered(layers ...Store) *Layered {
	ls := make([]Store, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return &Layered{layers: ls}
}

func (s *Layered) Get(key string) (string, bool) {
	for _, l := range s.layers {
		if v, ok := l.Get(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Set writes to all layers; one failing layer does not stop the others.
func (s *Layered) Set(key, value string) error {
	var firstErr error
	for _, l := range s.layers {
		if err := l.Set(key, value); err != nil {
			log.Printf("[storage] WARN: set %q failed on layer %T: %v", key, l, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Layered) Delete(key string) error {
	var firstErr error
	for _, l := range s.layers {
		if err := l.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
