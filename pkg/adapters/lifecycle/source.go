// Package lifecycle exposes store change notifications as a lifecycle.Source.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/studynotes/pkg/core"
)

type changeSource struct {
	store   core.Watchable
	pattern string
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits a core.Event for every
// external change to a key matching pattern. Start fails with
// core.ErrNotSupported when store cannot be watched.
func NewSource(store core.Store, pattern string) lifecycle.Source {
	w, _ := store.(core.Watchable)
	return &changeSource{
		store:   w,
		pattern: pattern,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start begins watching. Events stops (is closed) when ctx is done or the
// underlying watcher shuts down.
func (s *changeSource) Start(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("change source: %w", core.ErrNotSupported)
	}
	events, err := s.store.Watch(ctx, s.pattern)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
