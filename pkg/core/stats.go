package core

import "context"

// SubjectStats is the note count of one subject.
type SubjectStats struct {
	Subject Subject `json:"subject"`
	Notes   int     `json:"notes"`
}

// Stats summarizes the stored collections.
type Stats struct {
	Subjects   []SubjectStats `json:"subjects"`
	TotalNotes int            `json:"total_notes"`
	Orphans    int            `json:"orphans"`
}

// Stats counts notes per subject and notes whose subject is missing.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	subjects, err := s.LoadSubjects(ctx)
	if err != nil {
		return Stats{}, err
	}
	notes, err := s.LoadNotes(ctx)
	if err != nil {
		return Stats{}, err
	}

	counts := make(map[string]int, len(subjects))
	for _, n := range notes {
		counts[n.SubjectID]++
	}

	st := Stats{
		Subjects:   make([]SubjectStats, 0, len(subjects)),
		TotalNotes: len(notes),
	}
	attached := 0
	for _, sub := range subjects {
		c := counts[sub.ID]
		attached += c
		st.Subjects = append(st.Subjects, SubjectStats{Subject: sub, Notes: c})
	}
	st.Orphans = len(notes) - attached
	return st, nil
}
