package badger

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState is the introspection snapshot of a Badger store.
type StoreState struct {
	Path     string     `json:"path,omitempty"`
	InMemory bool       `json:"in_memory"`
	ReadOnly bool       `json:"read_only"`
	Open     bool       `json:"open"`
	LSMSize  int64      `json:"lsm_size"`
	VLogSize int64      `json:"vlog_size"`
	GCRuns   int        `json:"gc_runs"`
	LastGCAt *time.Time `json:"last_gc_at,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StoreState{
		Path:     s.config.Path,
		InMemory: s.config.InMemory,
		ReadOnly: s.config.ReadOnly,
		Open:     s.db != nil,
		GCRuns:   s.gcRuns,
		LastGCAt: s.lastGCAt,
	}
	if s.db != nil {
		st.LSMSize, st.VLogSize = s.db.Size()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "badger"
}

var (
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
