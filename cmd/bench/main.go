// Command bench measures whole-collection reads and writes on each adapter.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/studynotes"
	"github.com/aretw0/studynotes/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	adapters := flag.String("adapters", "fs,badger,sqlite,memory", "Comma separated adapters to measure")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "studynotes_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	notes := generate(*count)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	for _, name := range strings.Split(*adapters, ",") {
		name = strings.TrimSpace(name)
		uri := filepath.Join(benchDir, name)
		if name == studynotes.AdapterSQLite {
			uri = filepath.Join(benchDir, "bench.db")
		}
		r, err := measure(name, uri, logger, notes)
		if err != nil {
			fmt.Printf("  %-7s failed: %v\n", name, err)
			continue
		}
		fmt.Printf("  %-7s save %-12v load %-12v add %-12v cascade %v\n", name, r.save, r.load, r.add, r.cascade)
	}
	fmt.Printf("--------------------------------------------------\n")
}

type result struct {
	save, load, add, cascade time.Duration
}

func measure(adapter, uri string, logger *slog.Logger, notes []core.Note) (result, error) {
	var r result
	ctx := context.Background()

	svc, err := studynotes.New(uri,
		studynotes.WithAdapter(adapter),
		studynotes.WithAutoInit(true),
		studynotes.WithLogger(logger),
	)
	if err != nil {
		return r, err
	}
	defer svc.Close()

	if _, err := svc.EnsureSeeded(ctx); err != nil {
		return r, err
	}

	start := time.Now()
	if err := svc.SaveNotes(ctx, notes); err != nil {
		return r, err
	}
	r.save = time.Since(start)

	start = time.Now()
	loaded, err := svc.LoadNotes(ctx)
	if err != nil {
		return r, err
	}
	if len(loaded) != len(notes) {
		return r, fmt.Errorf("loaded %d notes, want %d", len(loaded), len(notes))
	}
	r.load = time.Since(start)

	extra, err := core.NewNote("extra", "1", "Extra", "One more", time.Now())
	if err != nil {
		return r, err
	}
	start = time.Now()
	if err := svc.AddNote(ctx, extra); err != nil {
		return r, err
	}
	r.add = time.Since(start)

	start = time.Now()
	if err := svc.DeleteSubject(ctx, "1"); err != nil {
		return r, err
	}
	r.cascade = time.Since(start)
	return r, nil
}

// generate spreads notes over the default subjects.
func generate(count int) []core.Note {
	subjects := core.DefaultSubjects()
	day := time.Now().UTC().Format(core.DateLayout)
	notes := make([]core.Note, 0, count)
	for i := 0; i < count; i++ {
		notes = append(notes, core.Note{
			ID:        fmt.Sprintf("bench-%d", i),
			SubjectID: subjects[i%len(subjects)].ID,
			Title:     fmt.Sprintf("Note %d", i),
			Content:   "This is a benchmark note.",
			CreatedAt: day,
		})
	}
	return notes
}
