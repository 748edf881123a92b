package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/studynotes/pkg/core"
)

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "List and manage subjects",
}

var (
	subjectJSON  bool
	subjectName  string
	subjectIcon  string
	subjectColor string
)

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects with their note counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return failure("load subjects", err)
		}

		out := cmd.OutOrStdout()
		if subjectJSON {
			return writeJSON(out, stats.Subjects)
		}
		for _, s := range stats.Subjects {
			fmt.Fprintf(out, "%s\t%-10s\t%-7s\t%s (%d notes)\n",
				s.Subject.ID, s.Subject.Icon, s.Subject.Color.Name(), s.Subject.Name, s.Notes)
		}
		return nil
	},
}

var subjectAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		icon, color, err := parsePalette()
		if err != nil {
			return err
		}

		subject, err := core.NewSubject(newID(), args[0], icon, color)
		if err != nil {
			return failure("add subject", err)
		}

		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.AddSubject(cmd.Context(), subject); err != nil {
			return failure("add subject", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject added: %s (%s)\n", subject.Name, subject.ID)
		return nil
	},
}

var subjectEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a subject's name, icon or color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		subject, err := svc.GetSubject(cmd.Context(), args[0])
		if err != nil {
			return failure("edit subject", err)
		}

		icon, color, err := parsePalette()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("name") {
			subject.Name = subjectName
		}
		if icon != "" {
			subject.Icon = icon
		}
		if color != "" {
			subject.Color = color
		}

		if err := svc.UpdateSubject(cmd.Context(), subject); err != nil {
			return failure("update subject", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject updated: %s\n", subject.Name)
		return nil
	},
}

var subjectDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a subject and all of its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		subject, err := svc.GetSubject(cmd.Context(), args[0])
		if err != nil {
			return failure("delete subject", err)
		}
		notes, _ := svc.LoadNotesBySubject(cmd.Context(), subject.ID)

		if err := svc.DeleteSubject(cmd.Context(), subject.ID); err != nil {
			var cerr *core.CascadeError
			if errors.As(err, &cerr) {
				return fmt.Errorf("subject %s deleted, but %d of its notes remain (run 'studynotes prune'): %w", subject.Name, cerr.Orphans, err)
			}
			return failure("delete subject", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject deleted: %s (%d notes removed)\n", subject.Name, len(notes))
		return nil
	},
}

func parsePalette() (core.Icon, core.Color, error) {
	var (
		icon  core.Icon
		color core.Color
		err   error
	)
	if subjectIcon != "" {
		if icon, err = core.ParseIcon(subjectIcon); err != nil {
			return "", "", fmt.Errorf("%w (choose one of: %s)", err, joinIcons())
		}
	}
	if subjectColor != "" {
		if color, err = core.ParseColor(subjectColor); err != nil {
			return "", "", fmt.Errorf("%w (choose one of: %s)", err, joinColors())
		}
	}
	return icon, color, nil
}

func joinIcons() string {
	var names []string
	for _, i := range core.Icons() {
		names = append(names, string(i))
	}
	return strings.Join(names, ", ")
}

func joinColors() string {
	var names []string
	for _, c := range core.Colors() {
		names = append(names, strings.ToLower(c.Name()))
	}
	return strings.Join(names, ", ")
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func init() {
	rootCmd.AddCommand(subjectCmd)
	subjectCmd.AddCommand(subjectListCmd, subjectAddCmd, subjectEditCmd, subjectDeleteCmd)

	subjectListCmd.Flags().BoolVar(&subjectJSON, "json", false, "Output in JSON format")
	for _, c := range []*cobra.Command{subjectAddCmd, subjectEditCmd} {
		c.Flags().StringVar(&subjectIcon, "icon", "", "Icon name (e.g. Calculator)")
		c.Flags().StringVar(&subjectColor, "color", "", "Color name or token (e.g. teal, bg-teal-500)")
	}
	subjectEditCmd.Flags().StringVar(&subjectName, "name", "", "New name")
}
