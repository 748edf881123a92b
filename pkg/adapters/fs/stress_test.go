package fs_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/studynotes/pkg/adapters/fs"
	"github.com/aretw0/studynotes/pkg/core"
)

// TestStress_ExternalWriter runs the service while another process keeps
// rewriting the subjects file and a watcher drains events. The notes file
// must always hold valid JSON, and every note the service added must be
// there at the end.
func TestStress_ExternalWriter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	dir := t.TempDir()
	store := newStore(t, fs.Config{Path: dir, Debounce: 5 * time.Millisecond})
	svc := core.NewService(store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup

	// External actor rewrites the subjects file.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			body := fmt.Sprintf(`[{"id":"x","name":"Noise %d","icon":"Star","color":"bg-rose-500"}]`, time.Now().UnixNano())
			_ = os.WriteFile(filepath.Join(dir, "study_subjects.json"), []byte(body), 0644)
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		}
	}()

	// Watcher only consumes.
	events, err := svc.Watch(ctx, "**")
	require.NoError(t, err)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range events {
		}
	}()

	// The service is the only writer of the notes file.
	added := 0
	for ctx.Err() == nil {
		n := core.Note{
			ID:        fmt.Sprintf("n%d", added),
			SubjectID: "x",
			Title:     "Stress",
			Content:   "body",
			CreatedAt: "2025-01-01",
		}
		require.NoError(t, svc.AddNote(context.Background(), n))
		added++
		time.Sleep(time.Millisecond)
	}
	wg.Wait()

	raw, err := os.ReadFile(filepath.Join(dir, "study_notes.json"))
	require.NoError(t, err)
	var notes []core.Note
	require.NoError(t, json.Unmarshal(raw, &notes), "notes file must stay valid JSON")
	assert.Len(t, notes, added)

	_, err = svc.LoadSubjects(context.Background())
	assert.NoError(t, err)
	t.Logf("survived with %d notes", added)
}
