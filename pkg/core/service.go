package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/studynotes/pkg/typed"
)

// Service is the only gateway between application state and the Store.
//
// It keeps nothing in memory between calls: every operation reloads the
// affected collection, changes it and writes it back whole. Callers are
// expected to await each call before issuing another on the same collection.
type Service struct {
	store       Store
	logger      *slog.Logger
	onError     func(error)
	strictLoad  bool
	sampleNotes bool

	mu          sync.RWMutex
	lastLoadErr error
	lastLoadAt  time.Time
}

// NewService creates a new Service over store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) notes(st typed.Store) *typed.Collection[Note] {
	return typed.NewCollection[Note](st, KeyNotes, typed.WithLoadPolicy(s.loadPolicy))
}

func (s *Service) subjects(st typed.Store) *typed.Collection[Subject] {
	return typed.NewCollection[Subject](st, KeySubjects, typed.WithLoadPolicy(s.loadPolicy))
}

// loadPolicy is applied when a mutation cannot load its collection.
func (s *Service) loadPolicy(key string, err error) error {
	err = s.reportLoadError(key, err)
	if s.strictLoad {
		return err
	}
	return nil
}

func (s *Service) reportLoadError(key string, err error) error {
	err = fmt.Errorf("%w %s: %w", ErrLoad, key, err)

	s.mu.Lock()
	s.lastLoadErr = err
	s.lastLoadAt = time.Now()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Warn("collection unreadable, treating as empty", "key", key, "error", err)
	}
	if s.onError != nil {
		s.onError(err)
	}
	return err
}

func saveErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSave, err)
}

// --- Notes ---

// LoadNotes returns every note in stored order.
//
// Loading fails soft: when the collection cannot be read or decoded the
// result is an empty slice, and the returned error (wrapping ErrLoad) only
// describes what went wrong. The failure is also logged and passed to the
// error handler.
func (s *Service) LoadNotes(ctx context.Context) ([]Note, error) {
	notes, err := s.notes(s.store).Load(ctx)
	if err != nil {
		return []Note{}, s.reportLoadError(KeyNotes, err)
	}
	return notes, nil
}

// LoadNotesBySubject returns the notes of one subject, in stored order.
func (s *Service) LoadNotesBySubject(ctx context.Context, subjectID string) ([]Note, error) {
	notes, err := s.LoadNotes(ctx)
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.SubjectID == subjectID {
			out = append(out, n)
		}
	}
	return out, err
}

// GetNote returns the note with the given id, or ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	notes, err := s.LoadNotes(ctx)
	if err != nil {
		return Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
}

// SaveNotes replaces the whole notes collection.
func (s *Service) SaveNotes(ctx context.Context, notes []Note) error {
	if err := s.notes(s.store).Save(ctx, notes); err != nil {
		if s.logger != nil {
			s.logger.Error("error saving notes", "error", err)
		}
		return saveErr(err)
	}
	if s.logger != nil {
		s.logger.Debug("notes saved", "count", len(notes))
	}
	return nil
}

// AddNote stores note at the front of the collection (most recent first).
func (s *Service) AddNote(ctx context.Context, note Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	if err := s.notes(s.store).Prepend(ctx, note); err != nil {
		return s.mutationErr(err)
	}
	if s.logger != nil {
		s.logger.Debug("note added", "id", note.ID, "subject_id", note.SubjectID)
	}
	return nil
}

// UpdateNote replaces the stored note with the same id, keeping its
// position. It is a no-op when no note has that id.
func (s *Service) UpdateNote(ctx context.Context, note Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	found, err := s.notes(s.store).Replace(ctx, note)
	if err != nil {
		return s.mutationErr(err)
	}
	if !found && s.logger != nil {
		s.logger.Debug("update skipped, note not found", "id", note.ID)
	}
	return nil
}

// DeleteNote removes the note with the given id. It is a no-op when no
// note has that id.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.notes(s.store).Remove(ctx, id); err != nil {
		return s.mutationErr(err)
	}
	return nil
}

// ClearAll removes the notes collection from the store. Subjects are kept.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.notes(s.store).Clear(ctx); err != nil {
		if s.logger != nil {
			s.logger.Error("error clearing storage", "error", err)
		}
		return saveErr(err)
	}
	return nil
}

// --- Subjects ---

// LoadSubjects returns every subject in stored order. It fails soft like
// LoadNotes.
func (s *Service) LoadSubjects(ctx context.Context) ([]Subject, error) {
	subjects, err := s.subjects(s.store).Load(ctx)
	if err != nil {
		return []Subject{}, s.reportLoadError(KeySubjects, err)
	}
	return subjects, nil
}

// GetSubject returns the subject with the given id, or ErrNotFound.
func (s *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	subjects, err := s.LoadSubjects(ctx)
	if err != nil {
		return Subject{}, err
	}
	for _, sub := range subjects {
		if sub.ID == id {
			return sub, nil
		}
	}
	return Subject{}, fmt.Errorf("subject %s: %w", id, ErrNotFound)
}

// SaveSubjects replaces the whole subjects collection.
func (s *Service) SaveSubjects(ctx context.Context, subjects []Subject) error {
	if err := s.subjects(s.store).Save(ctx, subjects); err != nil {
		if s.logger != nil {
			s.logger.Error("error saving subjects", "error", err)
		}
		return saveErr(err)
	}
	return nil
}

// AddSubject stores subject at the end of the collection.
func (s *Service) AddSubject(ctx context.Context, subject Subject) error {
	if err := subject.Validate(); err != nil {
		return err
	}
	if err := s.subjects(s.store).Append(ctx, subject); err != nil {
		return s.mutationErr(err)
	}
	if s.logger != nil {
		s.logger.Debug("subject added", "id", subject.ID, "name", subject.Name)
	}
	return nil
}

// UpdateSubject replaces the stored subject with the same id, keeping its
// position. It is a no-op when no subject has that id.
func (s *Service) UpdateSubject(ctx context.Context, subject Subject) error {
	if err := subject.Validate(); err != nil {
		return err
	}
	if _, err := s.subjects(s.store).Replace(ctx, subject); err != nil {
		return s.mutationErr(err)
	}
	return nil
}

// DeleteSubject removes the subject and every note belonging to it.
//
// On a Transactional store both rewrites commit together, the subjects
// first. A commit the store could only partly apply is reported like the
// non-transactional case below. Otherwise they
// run one after the other; if the notes rewrite fails after the subject is
// gone, the returned error is a *CascadeError (matching ErrPartialCascade)
// and the store holds orphaned notes until PruneOrphans runs.
func (s *Service) DeleteSubject(ctx context.Context, subjectID string) error {
	if tr, ok := s.store.(Transactional); ok {
		return s.deleteSubjectTx(ctx, tr, subjectID)
	}

	if _, err := s.subjects(s.store).Remove(ctx, subjectID); err != nil {
		return s.mutationErr(err)
	}

	removed, err := s.notes(s.store).RemoveWhere(ctx, func(n Note) bool { return n.SubjectID == subjectID })
	if err != nil {
		orphans, _ := s.LoadNotesBySubject(ctx, subjectID)
		cerr := &CascadeError{SubjectID: subjectID, Orphans: len(orphans), Err: err}
		if s.logger != nil {
			s.logger.Error("cascade delete incomplete", "subject_id", subjectID, "orphans", len(orphans), "error", err)
		}
		return cerr
	}
	if s.logger != nil {
		s.logger.Debug("subject deleted", "id", subjectID, "notes_removed", removed)
	}
	return nil
}

func (s *Service) deleteSubjectTx(ctx context.Context, tr Transactional, subjectID string) error {
	tx, err := tr.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}

	if _, err := s.subjects(tx).Remove(ctx, subjectID); err != nil {
		_ = tx.Rollback(ctx)
		return s.mutationErr(err)
	}
	removed, err := s.notes(tx).RemoveWhere(ctx, func(n Note) bool { return n.SubjectID == subjectID })
	if err != nil {
		_ = tx.Rollback(ctx)
		return s.mutationErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, ErrPartialCommit) {
			orphans, _ := s.LoadNotesBySubject(ctx, subjectID)
			if s.logger != nil {
				s.logger.Error("cascade delete incomplete", "subject_id", subjectID, "orphans", len(orphans), "error", err)
			}
			return &CascadeError{SubjectID: subjectID, Orphans: len(orphans), Err: err}
		}
		return saveErr(fmt.Errorf("commit cascade delete: %w", err))
	}

	if s.logger != nil {
		s.logger.Debug("subject deleted", "id", subjectID, "notes_removed", removed, "transactional", true)
	}
	return nil
}

// PruneOrphans removes notes whose subject no longer exists and returns
// how many were removed.
func (s *Service) PruneOrphans(ctx context.Context) (int, error) {
	subjects, err := s.LoadSubjects(ctx)
	if err != nil {
		// Pruning against an unreadable subject list would drop every note.
		return 0, err
	}
	known := make(map[string]struct{}, len(subjects))
	for _, sub := range subjects {
		known[sub.ID] = struct{}{}
	}

	removed, err := s.notes(s.store).RemoveWhere(ctx, func(n Note) bool {
		_, ok := known[n.SubjectID]
		return !ok
	})
	if err != nil {
		return 0, s.mutationErr(err)
	}
	if removed > 0 && s.logger != nil {
		s.logger.Info("orphaned notes removed", "count", removed)
	}
	return removed, nil
}

// mutationErr classifies an error from a read-modify-write.
func (s *Service) mutationErr(err error) error {
	if errors.Is(err, ErrLoad) {
		return err
	}
	if s.logger != nil {
		s.logger.Error("write failed", "error", err)
	}
	return saveErr(err)
}

// Watch observes changes made to the store's keys, if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrNotSupported)
	}
	return w.Watch(ctx, pattern)
}
