package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/studynotes/pkg/adapters/memory"
	"github.com/aretw0/studynotes/pkg/core"
)

// MockStore implements core.Store in memory.
// It deliberately does NOT implement core.Transactional so the sequential
// cascade path can be exercised, and it can be told to fail per key.
type MockStore struct {
	data    map[string][]byte
	failSet map[string]error
	failGet map[string]error
	sets    map[string]int
}

func NewMockStore() *MockStore {
	return &MockStore{
		data:    make(map[string][]byte),
		failSet: make(map[string]error),
		failGet: make(map[string]error),
		sets:    make(map[string]int),
	}
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := m.failGet[key]; err != nil {
		return nil, false, err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	if err := m.failSet[key]; err != nil {
		return err
	}
	m.sets[key]++
	m.data[key] = value
	return nil
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	if err := m.failSet[key]; err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func (m *MockStore) Initialize(ctx context.Context) error { return nil }
func (m *MockStore) Close() error                         { return nil }

var errDiskFull = errors.New("disk full")

var day = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func note(t *testing.T, id, subjectID, title string) core.Note {
	t.Helper()
	n, err := core.NewNote(id, subjectID, title, "content of "+title, day)
	require.NoError(t, err)
	return n
}

func subject(t *testing.T, id, name string) core.Subject {
	t.Helper()
	s, err := core.NewSubject(id, name, core.IconAtom, core.ColorTeal)
	require.NoError(t, err)
	return s
}

func ids(notes []core.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestService_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	svc := core.NewService(NewMockStore())

	require.NoError(t, svc.AddSubject(ctx, core.Subject{ID: "1", Name: "Math", Icon: "Calculator", Color: "bg-blue-500"}))
	n := core.Note{ID: "10", SubjectID: "1", Title: "T", Content: "C", CreatedAt: "2025-01-01"}
	require.NoError(t, svc.AddNote(ctx, n))

	got, err := svc.LoadNotesBySubject(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []core.Note{n}, got)

	require.NoError(t, svc.DeleteSubject(ctx, "1"))

	subjects, err := svc.LoadSubjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, subjects)
	notes, err := svc.LoadNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestService_Notes(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Empty Store", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		notes, err := svc.LoadNotes(ctx)
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	t.Run("Add Prepends", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.AddNote(ctx, note(t, "a", "s1", "first")))
		require.NoError(t, svc.AddNote(ctx, note(t, "b", "s1", "second")))

		before, _ := svc.LoadNotes(ctx)
		added := note(t, "c", "s2", "third")
		require.NoError(t, svc.AddNote(ctx, added))

		after, err := svc.LoadNotes(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before)+1)
		assert.Equal(t, added, after[0])
		assert.Equal(t, []string{"c", "b", "a"}, ids(after))
	})

	t.Run("Update Keeps Position", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{
			note(t, "a", "s1", "A"), note(t, "b", "s1", "B"), note(t, "c", "s2", "C"),
		}))

		edited := note(t, "b", "s2", "B edited")
		edited.Content = "new content"
		require.NoError(t, svc.UpdateNote(ctx, edited))

		notes, err := svc.LoadNotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(notes))
		assert.Equal(t, edited, notes[1])
		assert.Equal(t, "A", notes[0].Title)
		assert.Equal(t, "C", notes[2].Title)
	})

	t.Run("Update Missing Is No-op", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{note(t, "a", "s1", "A")}))
		writes := store.sets[core.KeyNotes]

		require.NoError(t, svc.UpdateNote(ctx, note(t, "zzz", "s1", "ghost")))

		notes, _ := svc.LoadNotes(ctx)
		assert.Equal(t, []string{"a"}, ids(notes))
		assert.Equal(t, writes, store.sets[core.KeyNotes], "no write expected")
	})

	t.Run("Delete Preserves Order", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{
			note(t, "a", "s1", "A"), note(t, "b", "s1", "B"), note(t, "c", "s2", "C"),
		}))

		require.NoError(t, svc.DeleteNote(ctx, "b"))
		notes, _ := svc.LoadNotes(ctx)
		assert.Equal(t, []string{"a", "c"}, ids(notes))

		require.NoError(t, svc.DeleteNote(ctx, "missing"))
		notes, _ = svc.LoadNotes(ctx)
		assert.Equal(t, []string{"a", "c"}, ids(notes))
	})

	t.Run("By Subject Is Ordered Subset", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		for i, sid := range []string{"s1", "s2", "s1", "s3", "s1"} {
			require.NoError(t, svc.AddNote(ctx, note(t, string(rune('a'+i)), sid, "n")))
		}
		require.NoError(t, svc.DeleteNote(ctx, "c"))
		require.NoError(t, svc.UpdateNote(ctx, note(t, "a", "s2", "moved")))

		all, _ := svc.LoadNotes(ctx)
		for _, sid := range []string{"s1", "s2", "s3", "none"} {
			var want []string
			for _, n := range all {
				if n.SubjectID == sid {
					want = append(want, n.ID)
				}
			}
			got, err := svc.LoadNotesBySubject(ctx, sid)
			require.NoError(t, err)
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, ids(got), "subject %s", sid)
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		for _, in := range [][]core.Note{
			{},
			{note(t, "x", "s1", "X")},
			{note(t, "y", "s2", "Y"), note(t, "x", "s1", "X")},
		} {
			require.NoError(t, svc.SaveNotes(ctx, in))
			out, err := svc.LoadNotes(ctx)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})

	t.Run("Nil Save Stores Empty Array", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		require.NoError(t, svc.SaveNotes(ctx, nil))
		assert.Equal(t, "[]", string(store.data[core.KeyNotes]))
	})

	t.Run("Clear Removes Only Notes", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		require.NoError(t, svc.AddSubject(ctx, subject(t, "s1", "Math")))
		require.NoError(t, svc.AddNote(ctx, note(t, "a", "s1", "A")))

		require.NoError(t, svc.ClearAll(ctx))
		_, ok := store.data[core.KeyNotes]
		assert.False(t, ok)
		subjects, _ := svc.LoadSubjects(ctx)
		assert.Len(t, subjects, 1)
	})

	t.Run("Get", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.AddNote(ctx, note(t, "a", "s1", "A")))

		n, err := svc.GetNote(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)

		_, err = svc.GetNote(ctx, "b")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestService_Subjects(t *testing.T) {
	ctx := context.Background()

	t.Run("Add Appends", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.AddSubject(ctx, subject(t, "1", "Math")))
		last := subject(t, "2", "Physics")
		require.NoError(t, svc.AddSubject(ctx, last))

		subjects, err := svc.LoadSubjects(ctx)
		require.NoError(t, err)
		require.Len(t, subjects, 2)
		assert.Equal(t, last, subjects[len(subjects)-1])
	})

	t.Run("Update", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math"), subject(t, "2", "Physics")}))

		renamed := core.Subject{ID: "1", Name: "Algebra", Icon: core.IconBrain, Color: core.ColorRose}
		require.NoError(t, svc.UpdateSubject(ctx, renamed))
		require.NoError(t, svc.UpdateSubject(ctx, subject(t, "9", "Ghost")))

		subjects, _ := svc.LoadSubjects(ctx)
		require.Len(t, subjects, 2)
		assert.Equal(t, renamed, subjects[0])
		assert.Equal(t, "Physics", subjects[1].Name)
	})

	t.Run("Delete Cascades", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math"), subject(t, "2", "Physics")}))
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{
			note(t, "a", "1", "A"), note(t, "b", "2", "B"), note(t, "c", "1", "C"),
		}))

		require.NoError(t, svc.DeleteSubject(ctx, "1"))

		subjects, _ := svc.LoadSubjects(ctx)
		require.Len(t, subjects, 1)
		assert.Equal(t, "2", subjects[0].ID)
		notes, _ := svc.LoadNotes(ctx)
		assert.Equal(t, []string{"b"}, ids(notes))
	})

	t.Run("Invalid Subject Rejected", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		err := svc.AddSubject(ctx, core.Subject{ID: "1", Name: "  ", Icon: "Unicorn", Color: core.ColorBlue})

		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "icon")
		assert.Empty(t, store.data)
	})
}

func TestService_SoftLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Corrupt Data Loads Empty", func(t *testing.T) {
		store := NewMockStore()
		store.data[core.KeyNotes] = []byte("{not json")

		var reported []error
		svc := core.NewService(store, core.WithErrorHandler(func(err error) { reported = append(reported, err) }))

		notes, err := svc.LoadNotes(ctx)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
		assert.ErrorIs(t, err, core.ErrLoad)
		require.Len(t, reported, 1)
		assert.ErrorIs(t, reported[0], core.ErrLoad)

		byID, err := svc.LoadNotesBySubject(ctx, "s1")
		assert.Empty(t, byID)
		assert.ErrorIs(t, err, core.ErrLoad)
	})

	t.Run("Read Failure Loads Empty", func(t *testing.T) {
		store := NewMockStore()
		store.failGet[core.KeySubjects] = errors.New("io error")
		svc := core.NewService(store)

		subjects, err := svc.LoadSubjects(ctx)
		assert.Empty(t, subjects)
		assert.ErrorIs(t, err, core.ErrLoad)
	})

	t.Run("Mutation Overwrites Unreadable Collection", func(t *testing.T) {
		store := NewMockStore()
		store.data[core.KeyNotes] = []byte("garbage")
		svc := core.NewService(store)

		n := note(t, "a", "s1", "A")
		require.NoError(t, svc.AddNote(ctx, n))
		notes, err := svc.LoadNotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Note{n}, notes)
	})

	t.Run("Strict Load Aborts Mutation", func(t *testing.T) {
		store := NewMockStore()
		store.data[core.KeyNotes] = []byte("garbage")
		svc := core.NewService(store, core.WithStrictLoad(true))

		err := svc.AddNote(ctx, note(t, "a", "s1", "A"))
		assert.ErrorIs(t, err, core.ErrLoad)
		assert.Equal(t, "garbage", string(store.data[core.KeyNotes]))
	})
}

func TestService_WriteFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("Save Propagates", func(t *testing.T) {
		store := NewMockStore()
		store.failSet[core.KeyNotes] = errDiskFull
		svc := core.NewService(store)

		err := svc.SaveNotes(ctx, []core.Note{note(t, "a", "s1", "A")})
		assert.ErrorIs(t, err, core.ErrSave)
		assert.ErrorIs(t, err, errDiskFull)

		err = svc.AddNote(ctx, note(t, "b", "s1", "B"))
		assert.ErrorIs(t, err, errDiskFull)

		err = svc.ClearAll(ctx)
		assert.ErrorIs(t, err, errDiskFull)
		assert.ErrorIs(t, err, core.ErrSave)
	})

	t.Run("Partial Cascade Is Reported", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math"), subject(t, "2", "Physics")}))
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{
			note(t, "a", "1", "A"), note(t, "b", "2", "B"), note(t, "c", "1", "C"),
		}))

		store.failSet[core.KeyNotes] = errDiskFull
		err := svc.DeleteSubject(ctx, "1")

		require.ErrorIs(t, err, core.ErrPartialCascade)
		assert.ErrorIs(t, err, errDiskFull)
		var cerr *core.CascadeError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "1", cerr.SubjectID)
		assert.Equal(t, 2, cerr.Orphans)

		// The inconsistency window: subject gone, its notes still stored.
		subjects, _ := svc.LoadSubjects(ctx)
		assert.Len(t, subjects, 1)
		notes, _ := svc.LoadNotes(ctx)
		assert.Len(t, notes, 3)

		delete(store.failSet, core.KeyNotes)
		removed, err := svc.PruneOrphans(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		notes, _ = svc.LoadNotes(ctx)
		assert.Equal(t, []string{"b"}, ids(notes))
	})

	t.Run("Subject Write Failure Leaves Notes", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math")}))
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{note(t, "a", "1", "A")}))

		store.failSet[core.KeySubjects] = errDiskFull
		err := svc.DeleteSubject(ctx, "1")
		assert.ErrorIs(t, err, errDiskFull)
		assert.NotErrorIs(t, err, core.ErrPartialCascade)

		notes, _ := svc.LoadNotes(ctx)
		assert.Len(t, notes, 1)
	})
}

// failingTxStore wraps the memory store and fails every commit.
type failingTxStore struct {
	*memory.Store
}

func (f failingTxStore) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failingTx{tx}, nil
}

type failingTx struct{ core.Tx }

func (failingTx) Commit(ctx context.Context) error { return errDiskFull }

func TestService_TransactionalCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits Both Collections", func(t *testing.T) {
		svc := core.NewService(memory.New())
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math"), subject(t, "2", "Physics")}))
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{note(t, "a", "1", "A"), note(t, "b", "2", "B")}))

		require.NoError(t, svc.DeleteSubject(ctx, "1"))

		subjects, _ := svc.LoadSubjects(ctx)
		require.Len(t, subjects, 1)
		notes, _ := svc.LoadNotes(ctx)
		assert.Equal(t, []string{"b"}, ids(notes))
	})

	t.Run("Failed Commit Changes Nothing", func(t *testing.T) {
		svc := core.NewService(failingTxStore{memory.New()})
		require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math")}))
		require.NoError(t, svc.SaveNotes(ctx, []core.Note{note(t, "a", "1", "A")}))

		err := svc.DeleteSubject(ctx, "1")
		assert.ErrorIs(t, err, errDiskFull)
		assert.NotErrorIs(t, err, core.ErrPartialCascade)

		subjects, _ := svc.LoadSubjects(ctx)
		assert.Len(t, subjects, 1)
		notes, _ := svc.LoadNotes(ctx)
		assert.Len(t, notes, 1)
	})
}

func TestService_EnsureSeeded(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeds Empty Store Once", func(t *testing.T) {
		store := NewMockStore()
		svc := core.NewService(store)

		subjects, err := svc.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Equal(t, core.DefaultSubjects(), subjects)
		assert.Equal(t, 1, store.sets[core.KeySubjects])

		_, err = svc.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, store.sets[core.KeySubjects])
		_, ok := store.data[core.KeyNotes]
		assert.False(t, ok, "notes are not seeded by default")
	})

	t.Run("Keeps Existing Subjects", func(t *testing.T) {
		svc := core.NewService(NewMockStore())
		own := subject(t, "x", "Art")
		require.NoError(t, svc.AddSubject(ctx, own))

		subjects, err := svc.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Subject{own}, subjects)
	})

	t.Run("Sample Notes", func(t *testing.T) {
		svc := core.NewService(NewMockStore(), core.WithSampleNotes(true))
		_, err := svc.EnsureSeeded(ctx)
		require.NoError(t, err)

		notes, _ := svc.LoadNotes(ctx)
		assert.Equal(t, core.DefaultNotes(), notes)
	})

	t.Run("Save Failure Still Returns Defaults", func(t *testing.T) {
		store := NewMockStore()
		store.failSet[core.KeySubjects] = errDiskFull
		svc := core.NewService(store)

		subjects, err := svc.EnsureSeeded(ctx)
		assert.ErrorIs(t, err, errDiskFull)
		assert.Equal(t, core.DefaultSubjects(), subjects)
	})

	t.Run("Unreadable Subjects Are Kept", func(t *testing.T) {
		store := NewMockStore()
		store.data[core.KeySubjects] = []byte("{corrupt")
		svc := core.NewService(store)

		subjects, err := svc.EnsureSeeded(ctx)
		assert.ErrorIs(t, err, core.ErrLoad)
		assert.Equal(t, core.DefaultSubjects(), subjects)
		assert.Equal(t, 0, store.sets[core.KeySubjects])
		assert.Equal(t, "{corrupt", string(store.data[core.KeySubjects]))
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	svc := core.NewService(NewMockStore())
	require.NoError(t, svc.SaveSubjects(ctx, []core.Subject{subject(t, "1", "Math"), subject(t, "2", "Physics")}))
	require.NoError(t, svc.SaveNotes(ctx, []core.Note{
		note(t, "a", "1", "A"), note(t, "b", "1", "B"), note(t, "c", "9", "C"),
	}))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalNotes)
	assert.Equal(t, 1, st.Orphans)
	require.Len(t, st.Subjects, 2)
	assert.Equal(t, 2, st.Subjects[0].Notes)
	assert.Equal(t, 0, st.Subjects[1].Notes)
}

func TestService_Watch_Unsupported(t *testing.T) {
	svc := core.NewService(NewMockStore())
	_, err := svc.Watch(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrNotSupported)
}

func TestService_State(t *testing.T) {
	store := NewMockStore()
	store.data[core.KeyNotes] = []byte("bad")
	svc := core.NewService(store, core.WithStrictLoad(true))

	_, _ = svc.LoadNotes(context.Background())

	st, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "store", st.StoreType)
	assert.False(t, st.Transactional)
	assert.True(t, st.StrictLoad)
	assert.NotEmpty(t, st.LastLoadError)
	assert.NotNil(t, st.LastLoadAt)
	assert.Equal(t, "service", svc.ComponentType())

	mem := core.NewService(memory.New()).State().(core.ServiceState)
	assert.Equal(t, "memory", mem.StoreType)
	assert.True(t, mem.Transactional)
}
