package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType     string     `json:"store_type"`
	Transactional bool       `json:"transactional"`
	Watchable     bool       `json:"watchable"`
	StrictLoad    bool       `json:"strict_load"`
	LastLoadError string     `json:"last_load_error,omitempty"`
	LastLoadAt    *time.Time `json:"last_load_error_at,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}
	_, tx := s.store.(Transactional)
	_, watch := s.store.(Watchable)

	st := ServiceState{
		StoreType:     storeType,
		Transactional: tx,
		Watchable:     watch,
		StrictLoad:    s.strictLoad,
	}
	if s.lastLoadErr != nil {
		at := s.lastLoadAt
		st.LastLoadError = s.lastLoadErr.Error()
		st.LastLoadAt = &at
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
