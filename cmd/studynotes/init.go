package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/studynotes"
	"github.com/aretw0/studynotes/internal/platform"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a store and seed the default subjects",
	Long: `Init creates the store in the current directory (or --path) and stores
the default subjects. The chosen adapter is recorded in studynotes.yaml so
later commands find it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(true)
		if err != nil {
			return err
		}
		defer svc.Close()

		subjects, err := svc.EnsureSeeded(cmd.Context())
		if err != nil {
			return failure("seed default subjects", err)
		}

		cfgFile := filepath.Join(baseDir, platform.ConfigFile)
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !readOnly {
			cfg := platform.Config{Adapter: adapter()}
			if storePath != "" {
				if cfg.Path, err = filepath.Abs(storePath); err != nil {
					return err
				}
			}
			if _, err := platform.WriteConfig(baseDir, cfg); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s store at %s with %d subjects\n",
			adapter(), storeURI(adapter()), len(subjects))
		return nil
	},
}

var seedSampleNotes bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the default subjects if there are none",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(false, withSampleNotes(seedSampleNotes)...)
		if err != nil {
			return err
		}
		defer svc.Close()

		subjects, err := svc.EnsureSeeded(cmd.Context())
		if err != nil {
			return failure("seed default subjects", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d subjects\n", len(subjects))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedSampleNotes, "sample-notes", false, "Also store sample notes when none exist")
}

// withSampleNotes only overrides the config file when the flag is set.
func withSampleNotes(enabled bool) []studynotes.Option {
	if !enabled {
		return nil
	}
	return []studynotes.Option{studynotes.WithSampleNotes(true)}
}
