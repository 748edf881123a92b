// Package storetest is a conformance suite for core.Store implementations.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/studynotes/pkg/core"
)

// Factory returns a fresh, initialized store. The suite closes it.
type Factory func(t *testing.T) core.Store

// Run exercises the key-value contract, the transaction contract when the
// store is core.Transactional, and the full Service on top of the store.
func Run(t *testing.T, newStore Factory) {
	t.Run("KeyValue", func(t *testing.T) { testKeyValue(t, newStore) })
	t.Run("Transaction", func(t *testing.T) { testTransaction(t, newStore) })
	t.Run("Service", func(t *testing.T) { testService(t, newStore) })
}

func open(t *testing.T, newStore Factory) core.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testKeyValue(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := open(t, newStore)

	_, found, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.False(t, found, "fresh store must not hold keys")

	require.NoError(t, s.Set(ctx, core.KeyNotes, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, core.KeyNotes, []byte(`[{"id":"1"}]`)))
	v, found, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, string(v))

	require.NoError(t, s.Set(ctx, core.KeySubjects, []byte(`[]`)))
	require.NoError(t, s.Remove(ctx, core.KeyNotes))
	_, found, err = s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.False(t, found)

	// Other keys are untouched and removing twice is fine.
	_, found, _ = s.Get(ctx, core.KeySubjects)
	assert.True(t, found)
	require.NoError(t, s.Remove(ctx, core.KeyNotes))
}

func testTransaction(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := open(t, newStore)
	tr, ok := s.(core.Transactional)
	if !ok {
		t.Skip("store is not transactional")
	}

	require.NoError(t, s.Set(ctx, core.KeySubjects, []byte(`["old"]`)))
	require.NoError(t, s.Set(ctx, core.KeyNotes, []byte(`["old"]`)))

	t.Run("Rollback", func(t *testing.T) {
		tx, err := tr.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Set(ctx, core.KeySubjects, []byte(`["new"]`)))

		v, found, err := tx.Get(ctx, core.KeySubjects)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `["new"]`, string(v), "tx reads its own writes")

		require.NoError(t, tx.Rollback(ctx))
		v, _, _ = s.Get(ctx, core.KeySubjects)
		assert.Equal(t, `["old"]`, string(v))
	})

	t.Run("Commit", func(t *testing.T) {
		tx, err := tr.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Set(ctx, core.KeySubjects, []byte(`["new"]`)))
		require.NoError(t, tx.Remove(ctx, core.KeyNotes))

		_, found, err := tx.Get(ctx, core.KeyNotes)
		require.NoError(t, err)
		assert.False(t, found)

		// Not visible before commit.
		v, _, _ := s.Get(ctx, core.KeySubjects)
		assert.Equal(t, `["old"]`, string(v))

		require.NoError(t, tx.Commit(ctx))
		require.NoError(t, tx.Rollback(ctx), "rollback after commit is harmless")

		v, _, _ = s.Get(ctx, core.KeySubjects)
		assert.Equal(t, `["new"]`, string(v))
		_, found, _ = s.Get(ctx, core.KeyNotes)
		assert.False(t, found)
	})
}

func testService(t *testing.T, newStore Factory) {
	ctx := context.Background()
	svc := core.NewService(open(t, newStore))

	subjects, err := svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, len(core.DefaultSubjects()))

	math := subjects[0]
	physics := subjects[1]
	first := core.Note{ID: "10", SubjectID: math.ID, Title: "T", Content: "C", CreatedAt: "2025-01-01"}
	second := core.Note{ID: "11", SubjectID: physics.ID, Title: "Laws", Content: "F = ma", CreatedAt: "2025-01-02"}
	require.NoError(t, svc.AddNote(ctx, first))
	require.NoError(t, svc.AddNote(ctx, second))

	notes, err := svc.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Note{second, first}, notes)

	byMath, err := svc.LoadNotesBySubject(ctx, math.ID)
	require.NoError(t, err)
	assert.Equal(t, []core.Note{first}, byMath)

	require.NoError(t, svc.DeleteSubject(ctx, math.ID))

	subjects, err = svc.LoadSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, len(core.DefaultSubjects())-1)
	notes, err = svc.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Note{second}, notes)

	require.NoError(t, svc.ClearAll(ctx))
	notes, err = svc.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
