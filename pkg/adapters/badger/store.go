// Package badger implements core.Store on an embedded BadgerDB.
//
// Every collection key is stored under a "studynotes/" prefix so the
// database can be shared with other data. Writes go through Badger's own
// transactions, which gives cascade deletes a real atomic commit.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/dgraph-io/badger/v4"

	"github.com/aretw0/studynotes/pkg/core"
)

const keyPrefix = "studynotes/"

// Config holds configuration for a Badger-backed store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool

	ReadOnly   bool
	SyncWrites bool

	// Logger receives Badger's internal logging. Nil disables it.
	Logger *slog.Logger

	// GCInterval is how often value log garbage collection runs.
	// Zero disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns the configuration for a durable store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration with no disk I/O.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store implements core.Store and core.Transactional.
type Store struct {
	config Config

	mu       sync.RWMutex
	db       *badger.DB
	stopGC   context.CancelFunc
	gcRuns   int
	lastGCAt *time.Time
}

// NewStore creates a store. The database is opened by Initialize.
func NewStore(config Config) *Store {
	return &Store{config: config}
}

// Initialize opens the database and starts value log GC if configured.
// Calling it again on an open store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if s.config.Path == "" {
			return errors.New("badger: path is required for a persistent store")
		}
		if !s.config.ReadOnly {
			if err := os.MkdirAll(s.config.Path, 0750); err != nil {
				return fmt.Errorf("create database directory %s: %w", s.config.Path, err)
			}
		}
		opts = badger.DefaultOptions(s.config.Path).WithReadOnly(s.config.ReadOnly)
	}
	opts = opts.WithSyncWrites(s.config.SyncWrites).WithNumVersionsToKeep(1)
	if s.config.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: s.config.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}
	s.db = db

	if s.config.GCInterval > 0 && !s.config.InMemory && !s.config.ReadOnly {
		gcCtx, cancel := context.WithCancel(context.Background())
		s.stopGC = cancel
		lifecycle.Go(gcCtx, s.runGC)
	}
	return nil
}

// runGC periodically reclaims value log space until ctx is done.
func (s *Store) runGC(ctx context.Context) error {
	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			db, err := s.handle()
			if err != nil {
				return nil
			}
			// Run until Badger reports there is nothing left to rewrite.
			for db.RunValueLogGC(s.config.GCDiscardRatio) == nil {
			}
			now := time.Now()
			s.mu.Lock()
			s.gcRuns++
			s.lastGCAt = &now
			s.mu.Unlock()
		}
	}
}

func (s *Store) handle() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("badger store is not open")
	}
	return s.db, nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.handle()
	if err != nil {
		return nil, false, err
	}
	var (
		value []byte
		found bool
	)
	err = db.View(func(txn *badger.Txn) error {
		value, found, err = get(txn, key)
		return err
	})
	return value, found, err
}

// Set implements core.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(key), value)
	})
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dbKey(key))
	})
}

// Close stops GC and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopGC != nil {
		s.stopGC()
		s.stopGC = nil
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Begin implements core.Transactional with a read-write Badger transaction.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	if s.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return &tx{txn: db.NewTransaction(true)}, nil
}

type tx struct {
	mu     sync.Mutex
	txn    *badger.Txn
	closed bool
}

func (t *tx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, false, errors.New("transaction closed")
	}
	return get(t.txn, key)
}

func (t *tx) Set(ctx context.Context, key string, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transaction closed")
	}
	return t.txn.Set(dbKey(key), value)
}

func (t *tx) Remove(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transaction closed")
	}
	return t.txn.Delete(dbKey(key))
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("transaction already closed")
	}
	t.closed = true
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("commit badger transaction: %w", err)
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.txn.Discard()
	return nil
}

func dbKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func get(txn *badger.Txn, key string) ([]byte, bool, error) {
	item, err := txn.Get(dbKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

var (
	_ core.Store         = (*Store)(nil)
	_ core.Transactional = (*Store)(nil)
)
