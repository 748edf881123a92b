package core

import "context"

// DefaultSubjects returns the built-in subjects stored on first launch.
func DefaultSubjects() []Subject {
	return []Subject{
		{ID: "1", Name: "Math", Icon: IconCalculator, Color: ColorBlue},
		{ID: "2", Name: "Physics", Icon: IconAtom, Color: ColorGreen},
		{ID: "3", Name: "English", Icon: IconBookOpen, Color: ColorRed},
		{ID: "4", Name: "IT", Icon: IconMonitor, Color: ColorCyan},
		{ID: "5", Name: "Literature", Icon: IconBookMarked, Color: ColorAmber},
		{ID: "6", Name: "History", Icon: IconLandmark, Color: ColorOrange},
		{ID: "7", Name: "Chemistry", Icon: IconFlask, Color: ColorEmerald},
		{ID: "8", Name: "Biology", Icon: IconMicroscope, Color: ColorTeal},
	}
}

// DefaultNotes returns sample notes for the default subjects.
func DefaultNotes() []Note {
	return []Note{
		{
			ID:        "1",
			SubjectID: "1",
			Title:     "Quadratic Equations",
			Content:   "The quadratic formula: x = (-b ± √(b²-4ac)) / 2a",
			CreatedAt: "2025-11-10",
		},
		{
			ID:        "2",
			SubjectID: "1",
			Title:     "Trigonometry Basics",
			Content:   "sin²θ + cos²θ = 1. Remember SOHCAHTOA for right triangles.",
			CreatedAt: "2025-11-11",
		},
		{
			ID:        "3",
			SubjectID: "2",
			Title:     "Newton's Laws",
			Content:   "First Law: Object in motion stays in motion unless acted upon by external force.",
			CreatedAt: "2025-11-09",
		},
		{
			ID:        "4",
			SubjectID: "3",
			Title:     "Grammar Rules",
			Content:   "Subject-verb agreement: singular subjects take singular verbs.",
			CreatedAt: "2025-11-12",
		},
	}
}

// EnsureSeeded stores DefaultSubjects when the subjects collection is
// empty and returns the subjects the caller should display.
//
// If the subjects cannot be loaded or the defaults cannot be saved, the
// defaults are still returned along with the error, so a caller can show
// them without persisting. An unreadable subjects value is never
// overwritten here.
func (s *Service) EnsureSeeded(ctx context.Context) ([]Subject, error) {
	subjects, err := s.LoadSubjects(ctx)
	if err != nil {
		return DefaultSubjects(), err
	}
	if len(subjects) > 0 {
		return subjects, nil
	}

	subjects = DefaultSubjects()
	if err := s.SaveSubjects(ctx, subjects); err != nil {
		return subjects, err
	}
	if s.logger != nil {
		s.logger.Info("default subjects stored", "count", len(subjects))
	}

	if s.sampleNotes {
		_, found, err := s.store.Get(ctx, KeyNotes)
		if err != nil {
			return subjects, s.reportLoadError(KeyNotes, err)
		}
		if !found {
			if err := s.SaveNotes(ctx, DefaultNotes()); err != nil {
				return subjects, err
			}
		}
	}
	return subjects, nil
}
