package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	ReadOnly      bool       `json:"read_only"`
	Keys          []string   `json:"keys"`
	ActiveWatches int        `json:"active_watches"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
	Transactions  int        `json:"transactions_started"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	keys, _ := s.Keys()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.Path,
		ReadOnly:      s.config.ReadOnly,
		Keys:          keys,
		ActiveWatches: s.watchers,
		LastEvent:     s.lastEvent,
		Transactions:  s.transactionID,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.watchers++
	} else if s.watchers > 0 {
		s.watchers--
	}
}

func (s *Store) recordEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastEvent = &now
}
