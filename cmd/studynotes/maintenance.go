package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every note (subjects are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return errors.New("refusing to delete all notes without --yes")
		}
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.ClearAll(cmd.Context()); err != nil {
			return failure("clear notes", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All notes deleted")
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete notes whose subject no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		removed, err := svc.PruneOrphans(cmd.Context())
		if err != nil {
			return failure("prune notes", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned notes\n", removed)
		return nil
	},
}

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show note counts and store state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return failure("load status", err)
		}

		var storeState any
		if in, ok := svc.Store().(introspection.Introspectable); ok {
			storeState = in.State()
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			return writeJSON(out, map[string]any{
				"stats":   stats,
				"service": svc.State(),
				"store":   storeState,
			})
		}

		fmt.Fprintf(out, "Store: %s at %s\n", adapter(), storeURI(adapter()))
		fmt.Fprintf(out, "Subjects: %d\nNotes: %d\n", len(stats.Subjects), stats.TotalNotes)
		if stats.Orphans > 0 {
			fmt.Fprintf(out, "Orphaned notes: %d (run 'studynotes prune')\n", stats.Orphans)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd, pruneCmd, statusCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting all notes")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}
