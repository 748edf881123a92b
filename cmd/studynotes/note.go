package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/studynotes/pkg/core"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "List and manage notes",
}

var (
	noteJSON    bool
	noteSubject string
	noteTitle   string
	noteContent string
)

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		var notes []core.Note
		if noteSubject != "" {
			notes, err = svc.LoadNotesBySubject(cmd.Context(), noteSubject)
		} else {
			notes, err = svc.LoadNotes(cmd.Context())
		}
		if err != nil {
			return failure("load notes", err)
		}

		out := cmd.OutOrStdout()
		if noteJSON {
			return writeJSON(out, notes)
		}
		names := subjectNames(cmd, svc)
		for _, n := range notes {
			fmt.Fprintf(out, "%s\t%s\t[%s] %s\n", n.ID, n.CreatedAt, names(n.SubjectID), n.Title)
		}
		return nil
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		n, err := svc.GetNote(cmd.Context(), args[0])
		if err != nil {
			return failure("show note", err)
		}
		names := subjectNames(cmd, svc)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s | %s\n\n%s\n", n.Title, names(n.SubjectID), n.CreatedAt, n.Content)
		return nil
	},
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Write a note for a subject",
	Long:  `Add stores a new note. Pass --content - to read the content from stdin.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd.InOrStdin(), noteContent)
		if err != nil {
			return err
		}

		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		if _, err := svc.GetSubject(cmd.Context(), noteSubject); err != nil {
			return failure("add note", err)
		}

		n, err := core.NewNote(newID(), noteSubject, noteTitle, content, time.Now())
		if err != nil {
			return failure("add note", err)
		}
		if err := svc.AddNote(cmd.Context(), n); err != nil {
			return failure("add note", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note added: %s (%s)\n", n.Title, n.ID)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a note's title, content or subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		n, err := svc.GetNote(cmd.Context(), args[0])
		if err != nil {
			return failure("edit note", err)
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			n.Title = noteTitle
		}
		if flags.Changed("content") {
			if n.Content, err = readContent(cmd.InOrStdin(), noteContent); err != nil {
				return err
			}
		}
		if flags.Changed("subject") {
			if _, err := svc.GetSubject(cmd.Context(), noteSubject); err != nil {
				return failure("move note", err)
			}
			n.SubjectID = noteSubject
		}

		if err := svc.UpdateNote(cmd.Context(), n); err != nil {
			return failure("update note", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", n.Title)
		return nil
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.DeleteNote(cmd.Context(), args[0]); err != nil {
			return failure("delete note", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", args[0])
		return nil
	},
}

// newID returns a time-ordered unique id.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// readContent returns value, or all of r when value is "-".
func readContent(r io.Reader, value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// subjectNames returns a lookup from subject id to display name.
func subjectNames(cmd *cobra.Command, svc *core.Service) func(string) string {
	subjects, _ := svc.LoadSubjects(cmd.Context())
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "unknown subject"
	}
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteListCmd, noteShowCmd, noteAddCmd, noteEditCmd, noteDeleteCmd)

	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
	noteListCmd.Flags().StringVar(&noteSubject, "subject", "", "Only notes of this subject id")

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVar(&noteSubject, "subject", "", "Subject id")
		c.Flags().StringVar(&noteTitle, "title", "", "Note title")
		c.Flags().StringVar(&noteContent, "content", "", "Note content, or - for stdin")
	}
	_ = noteAddCmd.MarkFlagRequired("subject")
}
