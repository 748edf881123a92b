package core

import "strings"

// Subject is a user-defined category grouping Notes (e.g. "Math").
type Subject struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"notblank"`
	Icon  Icon   `json:"icon" validate:"icon"`
	Color Color  `json:"color" validate:"color"`
}

// NewSubject builds a validated Subject.
// Empty icon or color fall back to DefaultIcon and DefaultColor.
func NewSubject(id, name string, icon Icon, color Color) (Subject, error) {
	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}
	s := Subject{
		ID:    strings.TrimSpace(id),
		Name:  name,
		Icon:  icon,
		Color: color,
	}
	if err := s.Validate(); err != nil {
		return Subject{}, err
	}
	return s, nil
}

// GetID implements typed.Identifiable.
func (s Subject) GetID() string { return s.ID }

// Validate checks the Subject's invariants.
func (s Subject) Validate() error {
	return validate("subject", s)
}
