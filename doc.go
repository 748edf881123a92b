// Package studynotes is the composition root of the study notes store.
//
// It wires the domain service (pkg/core) to a storage adapter chosen by
// name: plain JSON files (default), BadgerDB, SQLite, or memory.
//
// Subjects and notes are each kept as one JSON array under a fixed key
// ("study_subjects" and "study_notes"). Every operation reloads the
// collection it touches and writes it back whole, so the store is always
// the single source of truth.
//
// Usage:
//
//	svc, err := studynotes.New("./data",
//		studynotes.WithAutoInit(true),
//		studynotes.WithLogger(logger),
//	)
//
//	subjects, err := svc.EnsureSeeded(ctx)
//	err = svc.AddNote(ctx, note)
package studynotes
