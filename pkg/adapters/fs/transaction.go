package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/studynotes/pkg/core"
)

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

// Transaction implements core.Tx for the filesystem.
//
// Commit first writes every staged value to a synced temp file; only when
// all of them exist are they moved into place, in the order the keys were
// staged. Each replaced file is kept as a hard-linked backup until the
// commit finishes, so a failed move restores every key already applied.
// If that restore fails too, Commit returns an error matching
// core.ErrPartialCommit.
type Transaction struct {
	store   *Store
	staged  map[string][]byte // key -> value
	removed map[string]bool
	order   []string
	mu      sync.Mutex
	closed  bool
}

func newTransaction(store *Store) *Transaction {
	return &Transaction{
		store:   store,
		staged:  make(map[string][]byte),
		removed: make(map[string]bool),
	}
}

// Get retrieves a value, favoring staged changes.
func (t *Transaction) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, false, fmt.Errorf("transaction closed")
	}
	if t.removed[key] {
		return nil, false, nil
	}
	if v, ok := t.staged[key]; ok {
		return v, true, nil
	}
	return t.store.Get(ctx, key)
}

// Set stages a value.
func (t *Transaction) Set(ctx context.Context, key string, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	if _, err := t.store.filename(key); err != nil {
		return err
	}
	t.touch(key)
	t.staged[key] = append([]byte(nil), value...)
	delete(t.removed, key)
	return nil
}

// Remove stages a removal.
func (t *Transaction) Remove(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	if _, err := t.store.filename(key); err != nil {
		return err
	}
	t.touch(key)
	t.removed[key] = true
	delete(t.staged, key)
	return nil
}

// touch records the first time key is staged.
func (t *Transaction) touch(key string) {
	if _, ok := t.staged[key]; ok {
		return
	}
	if t.removed[key] {
		return
	}
	t.order = append(t.order, key)
}

// appliedKey is a key already moved into place during Commit.
type appliedKey struct {
	key      string
	filename string
	backup   string // empty when the key did not exist before
}

// Commit applies all staged changes.
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction already closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// 1. Stage every write.
	temps := make(map[string]string, len(t.staged))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}
	for _, key := range t.order {
		value, ok := t.staged[key]
		if !ok {
			continue
		}
		filename, _ := t.store.filename(key)
		tmp, err := stageFile(filename, value, 0644)
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to stage %s: %w", key, err)
		}
		temps[key] = tmp
	}

	// 2. Move them into place, backing up whatever they replace.
	var applied []appliedKey
	for _, key := range t.order {
		filename, _ := t.store.filename(key)
		backup, err := t.backup(key, filename)
		if err == nil {
			t.store.self.mark(key)
			if tmp, ok := temps[key]; ok {
				err = rename(tmp, filename)
				if err == nil {
					delete(temps, key)
				}
			} else if backup != "" {
				err = os.Remove(filename)
			}
		}
		if err != nil {
			if backup != "" {
				os.Remove(backup)
			}
			cleanup()
			t.closed = true
			return t.restore(applied, fmt.Errorf("failed to commit %s: %w", key, err))
		}
		applied = append(applied, appliedKey{key: key, filename: filename, backup: backup})
	}

	for _, a := range applied {
		if a.backup != "" {
			os.Remove(a.backup)
		}
	}

	t.closed = true
	if t.store.config.Logger != nil {
		t.store.config.Logger.Debug("transaction committed", "written", len(t.staged), "removed", len(t.removed))
	}
	return nil
}

// backup hard-links the current file of key to a temp name so it can be
// restored. It returns "" when there is nothing to back up.
func (t *Transaction) backup(key, filename string) (string, error) {
	backup := filepath.Join(t.store.Path, TempFilePrefix+"backup-"+key+fileExt)
	_ = os.Remove(backup)
	if err := os.Link(filename, backup); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to back up %s: %w", key, err)
	}
	return backup, nil
}

// restore puts back every applied key, newest first.
func (t *Transaction) restore(applied []appliedKey, cause error) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		t.store.self.mark(a.key)
		var err error
		if a.backup != "" {
			err = rename(a.backup, a.filename)
		} else {
			err = os.Remove(a.filename)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", a.key, err))
		}
	}
	if len(errs) == 0 {
		return cause
	}

	if t.store.config.Logger != nil {
		t.store.config.Logger.Error("transaction partially applied", "error", cause, "restore_errors", len(errs))
	}
	return fmt.Errorf("%w: %w", core.ErrPartialCommit, errors.Join(append([]error{cause}, errs...)...))
}

// Rollback discards all staged changes.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.staged = nil
	t.removed = nil
	t.order = nil
	t.closed = true
	return nil
}

var _ core.Tx = (*Transaction)(nil)
