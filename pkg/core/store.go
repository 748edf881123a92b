package core

import "context"

// Store is the durable key-value store holding the serialized collections.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (plain files, Badger, SQLite, memory).
type Store interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error

	// Close releases the resources held by the store.
	Close() error
}

// Tx is a unit of work over a Store.
// Writes staged in a Tx become visible together on Commit.
type Tx interface {
	// Get returns the staged value if one exists, otherwise the stored one.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stages a write.
	Set(ctx context.Context, key string, value []byte) error

	// Remove stages a removal.
	Remove(ctx context.Context, key string) error

	// Commit applies all staged changes atomically. A store that cannot
	// undo a half-applied commit reports it with an error matching
	// ErrPartialCommit; keys staged first are applied first.
	Commit(ctx context.Context) error

	// Rollback discards all staged changes. It is safe to call after Commit.
	Rollback(ctx context.Context) error
}

// Transactional is implemented by stores that can group writes.
type Transactional interface {
	Begin(ctx context.Context) (Tx, error)
}

// Watchable is implemented by stores that can report changes made to
// their keys by other processes.
type Watchable interface {
	// Watch emits an Event for every change to a key matching pattern
	// (doublestar syntax, "" or "**" for all keys) until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
