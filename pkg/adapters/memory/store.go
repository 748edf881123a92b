// Package memory provides an in-process core.Store. Nothing survives a
// restart; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/studynotes/pkg/core"
)

// Store is a mutex-guarded map implementing core.Store and core.Transactional.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Initialize implements core.Store.
func (s *Store) Initialize(ctx context.Context) error {
	return nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, fmt.Errorf("memory store closed")
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements core.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	delete(s.data, key)
	return nil
}

// Close implements core.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

// Begin implements core.Transactional.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("memory store closed")
	}
	return &tx{
		store:   s,
		staged:  make(map[string][]byte),
		removed: make(map[string]bool),
	}, nil
}

type tx struct {
	store   *Store
	staged  map[string][]byte
	removed map[string]bool
	mu      sync.Mutex
	closed  bool
}

func (t *tx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, false, fmt.Errorf("transaction closed")
	}
	if t.removed[key] {
		return nil, false, nil
	}
	if v, ok := t.staged[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	return t.store.Get(ctx, key)
}

func (t *tx) Set(ctx context.Context, key string, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	t.staged[key] = append([]byte(nil), value...)
	delete(t.removed, key)
	return nil
}

func (t *tx) Remove(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	t.removed[key] = true
	delete(t.staged, key)
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction already closed")
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.closed {
		return fmt.Errorf("memory store closed")
	}
	for k, v := range t.staged {
		t.store.data[k] = v
	}
	for k := range t.removed {
		delete(t.store.data, k)
	}
	t.closed = true
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.staged = nil
	t.removed = nil
	t.closed = true
	return nil
}

var (
	_ core.Store         = (*Store)(nil)
	_ core.Transactional = (*Store)(nil)
)
