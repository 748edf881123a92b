package lifecycle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/studynotes/pkg/adapters/fs"
	"github.com/aretw0/studynotes/pkg/adapters/lifecycle"
	"github.com/aretw0/studynotes/pkg/adapters/memory"
	"github.com/aretw0/studynotes/pkg/core"
)

func TestSource_Unsupported(t *testing.T) {
	src := lifecycle.NewSource(memory.New(), "")
	assert.ErrorIs(t, src.Start(context.Background()), core.ErrNotSupported)
}

func TestSource_BridgesEvents(t *testing.T) {
	dir := t.TempDir()
	store := fs.NewStore(fs.Config{Path: dir, Debounce: 10 * time.Millisecond})
	require.NoError(t, store.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := lifecycle.NewSource(store, core.KeySubjects)
	require.NoError(t, src.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "study_subjects.json"), []byte("[]"), 0644))

	select {
	case e := <-src.Events():
		ev, ok := e.(core.Event)
		require.True(t, ok)
		assert.Equal(t, core.KeySubjects, ev.Key)
		assert.Contains(t, e.String(), core.KeySubjects)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-src.Events():
		for ok {
			_, ok = <-src.Events()
		}
	case <-time.After(3 * time.Second):
		t.Fatal("source not closed after cancel")
	}
}
