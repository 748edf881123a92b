// Package core defines the study notes domain: the Subject and Note
// entities, the key-value Store contract, and the Service that mediates
// every read and write of the two persisted collections.
package core

import (
	"fmt"
	"time"
)

// Storage keys. Each holds the full collection as a JSON array.
const (
	KeyNotes    = "study_notes"
	KeySubjects = "study_subjects"
)

// DateLayout is the calendar date format of Note.CreatedAt.
const DateLayout = "2006-01-02"

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a stored key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s", e.Type, e.Key, time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}
