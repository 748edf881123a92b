package studynotes_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/studynotes"
	"github.com/aretw0/studynotes/pkg/core"
)

// Example_basic seeds a store, adds a note and deletes its subject.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "studynotes-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := studynotes.New(tmpDir, studynotes.WithAutoInit(true))
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()

	subjects, err := svc.EnsureSeeded(ctx)
	if err != nil {
		log.Fatal(err)
	}
	math := subjects[0]
	fmt.Printf("%d subjects, first is %s\n", len(subjects), math.Name)

	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	note, err := core.NewNote("n1", math.ID, "Derivatives", "d/dx x^2 = 2x", created)
	if err != nil {
		log.Fatal(err)
	}
	if err := svc.AddNote(ctx, note); err != nil {
		log.Fatal(err)
	}

	notes, _ := svc.LoadNotesBySubject(ctx, math.ID)
	fmt.Printf("%s has %d note: %s (%s)\n", math.Name, len(notes), notes[0].Title, notes[0].CreatedAt)

	if err := svc.DeleteSubject(ctx, math.ID); err != nil {
		log.Fatal(err)
	}
	notes, _ = svc.LoadNotes(ctx)
	fmt.Printf("after delete: %d notes\n", len(notes))
	// Output:
	// 8 subjects, first is Math
	// Math has 1 note: Derivatives (2025-01-01)
	// after delete: 0 notes
}

// ExampleNew_memory shows the in-memory adapter and validation errors.
func ExampleNew_memory() {
	svc, err := studynotes.New("", studynotes.WithAdapter(studynotes.AdapterMemory))
	if err != nil {
		log.Fatal(err)
	}

	err = svc.AddSubject(context.Background(), core.Subject{ID: "s1", Name: "  ", Icon: core.IconAtom, Color: core.ColorTeal})
	fmt.Println(err)
	// Output:
	// invalid subject: name is required
}
