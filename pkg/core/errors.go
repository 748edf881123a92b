package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors.
var (
	ErrReadOnly       = errors.New("store is in read-only mode")
	ErrNotFound       = errors.New("not found")
	ErrLoad           = errors.New("failed to load collection")
	ErrSave           = errors.New("failed to save collection")
	ErrValidation     = errors.New("validation failed")
	ErrPartialCascade = errors.New("subject deleted but its notes were not")
	ErrNotSupported   = errors.New("operation not supported by store")
	ErrPartialCommit  = errors.New("transaction partially applied")
	ErrInvalidIcon    = errors.New("invalid icon")
	ErrInvalidColor   = errors.New("invalid color")
)

// ValidationError reports which fields of an entity failed validation.
// Fields are keyed by their JSON names.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CascadeError is returned by DeleteSubject when the subject was removed
// but the follow-up rewrite of the notes collection failed. The store is
// left holding Orphans notes that still reference SubjectID.
type CascadeError struct {
	SubjectID string
	Orphans   int
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("subject %s deleted, %d notes left orphaned: %v", e.SubjectID, e.Orphans, e.Err)
}

func (e *CascadeError) Unwrap() []error {
	return []error{ErrPartialCascade, e.Err}
}
