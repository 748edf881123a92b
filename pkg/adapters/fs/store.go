// Package fs implements core.Store on a plain directory: every key is one
// JSON file named "<key>.json", replaced atomically on each write.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/studynotes/pkg/core"
)

const fileExt = ".json"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher failures
	EventBuffer  int          // watch channel size, 0 means 100
	Debounce     time.Duration
}

// Store implements core.Store using the filesystem.
type Store struct {
	Path   string
	config Config

	self *selfWrites

	mu            sync.RWMutex
	watchers      int
	lastEvent     *time.Time
	transactionID int
}

// NewStore creates a new filesystem-backed store. It does no I/O until
// Initialize or the first operation.
func NewStore(config Config) *Store {
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Store{
		Path:   config.Path,
		config: config,
		self:   newSelfWrites(2 * time.Second),
	}
}

// Initialize creates the store directory unless it must already exist.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat store path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Close implements core.Store. Watchers stop with their context.
func (s *Store) Close() error {
	return nil
}

// Get reads the file backing key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set atomically replaces the file backing key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	s.self.mark(key)
	if err := writeFileAtomic(filename, value, 0644); err != nil {
		return err
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	}
	return nil
}

// Remove deletes the file backing key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	s.self.mark(key)
	if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys currently stored.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list store: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if key, ok := keyFromName(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	if s.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	s.mu.Lock()
	s.transactionID++
	s.mu.Unlock()
	return newTransaction(s), nil
}

func (s *Store) filename(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.Path, key+fileExt), nil
}

// keyFromName maps a file name back to its key.
func keyFromName(name string) (string, bool) {
	if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)
	return key, key != ""
}

// selfWrites remembers keys this process just wrote so the watcher can
// skip the events they cause.
type selfWrites struct {
	mu     sync.Mutex
	window time.Duration
	keys   map[string]time.Time
}

func newSelfWrites(window time.Duration) *selfWrites {
	return &selfWrites{window: window, keys: make(map[string]time.Time)}
}

func (w *selfWrites) mark(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys[key] = time.Now()
}

// recent reports whether key was written by this process within the window.
func (w *selfWrites) recent(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	at, ok := w.keys[key]
	if !ok {
		return false
	}
	if time.Since(at) > w.window {
		delete(w.keys, key)
		return false
	}
	return true
}

var (
	_ core.Store         = (*Store)(nil)
	_ core.Transactional = (*Store)(nil)
	_ core.Watchable     = (*Store)(nil)
)
