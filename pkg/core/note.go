package core

import (
	"strings"
	"time"
)

// Note is a user-authored title and content belonging to exactly one Subject.
type Note struct {
	ID        string `json:"id" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content" validate:"notblank"`
	CreatedAt string `json:"createdAt" validate:"required,datetime=2006-01-02"`
}

// NewNote builds a validated Note stamped with the calendar date of now (UTC).
func NewNote(id, subjectID, title, content string, now time.Time) (Note, error) {
	n := Note{
		ID:        strings.TrimSpace(id),
		SubjectID: strings.TrimSpace(subjectID),
		Title:     title,
		Content:   content,
		CreatedAt: now.UTC().Format(DateLayout),
	}
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	return n, nil
}

// GetID implements typed.Identifiable.
func (n Note) GetID() string { return n.ID }

// Validate checks the Note's invariants.
func (n Note) Validate() error {
	return validate("note", n)
}

// Created parses CreatedAt.
func (n Note) Created() (time.Time, error) {
	return time.Parse(DateLayout, n.CreatedAt)
}
