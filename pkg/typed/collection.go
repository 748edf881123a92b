// Package typed stores ordered collections of Go values as a single JSON
// array under one key of a key-value store.
//
// Every operation is a full read-modify-write: the array is loaded, changed
// in memory and written back whole. There is no cache between calls.
package typed

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the subset of a key-value store a Collection needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Identifiable is implemented by collection items.
type Identifiable interface {
	GetID() string
}

// DecodeError reports a stored value that is not a JSON array of T.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadPolicy decides what a mutation does when the current collection
// cannot be loaded. Returning nil continues with an empty collection;
// returning an error aborts the mutation with it.
type LoadPolicy func(key string, err error) error

// Option configures a Collection.
type Option func(*options)

type options struct {
	loadPolicy LoadPolicy
}

// WithLoadPolicy sets the policy applied to load failures inside mutations.
// Without one, load failures abort the mutation.
func WithLoadPolicy(p LoadPolicy) Option {
	return func(o *options) {
		o.loadPolicy = p
	}
}

// Collection is an ordered collection of T persisted under one key.
type Collection[T Identifiable] struct {
	store Store
	key   string
	opts  options
}

// NewCollection binds a collection of T to key in store.
func NewCollection[T Identifiable](store Store, key string, opts ...Option) *Collection[T] {
	c := &Collection[T]{store: store, key: key}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Key returns the storage key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns every item in stored order.
// An absent key yields an empty, non-nil slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return []T{}, fmt.Errorf("read %s: %w", c.key, err)
	}
	if !found || len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, &DecodeError{Key: c.key, Err: err}
	}
	if items == nil {
		// A stored "null" is treated like an absent key.
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole collection. A nil slice is stored as [].
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// Find returns the item with the given id.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.Load(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.GetID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Filter returns the items matching keep, preserving order.
func (c *Collection[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	items, err := c.Load(ctx)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, err
}

// Prepend stores item at the front of the collection.
func (c *Collection[T]) Prepend(ctx context.Context, item T) error {
	items, err := c.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	return c.Save(ctx, append([]T{item}, items...))
}

// Append stores item at the end of the collection.
func (c *Collection[T]) Append(ctx context.Context, item T) error {
	items, err := c.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	return c.Save(ctx, append(items, item))
}

// Replace swaps the stored item sharing item's id, keeping its position.
// It reports false, and writes nothing, when no item has that id.
func (c *Collection[T]) Replace(ctx context.Context, item T) (bool, error) {
	items, err := c.loadForUpdate(ctx)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].GetID() == item.GetID() {
			items[i] = item
			return true, c.Save(ctx, items)
		}
	}
	return false, nil
}

// Remove deletes the items with the given id.
// It reports false, and writes nothing, when no item has that id.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	n, err := c.RemoveWhere(ctx, func(item T) bool { return item.GetID() == id })
	return n > 0, err
}

// RemoveWhere deletes every item matching drop and returns how many were
// removed. Nothing is written when no item matches.
func (c *Collection[T]) RemoveWhere(ctx context.Context, drop func(T) bool) (int, error) {
	items, err := c.loadForUpdate(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := c.Save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear removes the key from the store.
func (c *Collection[T]) Clear(ctx context.Context) error {
	if err := c.store.Remove(ctx, c.key); err != nil {
		return fmt.Errorf("remove %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) loadForUpdate(ctx context.Context) ([]T, error) {
	items, err := c.Load(ctx)
	if err == nil {
		return items, nil
	}
	if c.opts.loadPolicy == nil {
		return nil, err
	}
	if perr := c.opts.loadPolicy(c.key, err); perr != nil {
		return nil, perr
	}
	return []T{}, nil
}
