package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/studynotes"
	"github.com/aretw0/studynotes/internal/platform"
	"github.com/aretw0/studynotes/pkg/core"
)

var (
	verbose     bool
	storePath   string
	adapterName string
	configPath  string
	readOnly    bool

	// Set by PersistentPreRunE.
	fileConfig platform.Config
	baseDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studynotes",
	Short: "Keep study notes organized by subject",
	Long: `studynotes stores subjects and the notes written for them.
Each collection is kept whole under one key of the chosen store
(a directory of JSON files by default, or Badger, SQLite, memory).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadSettings(); err != nil {
			return err
		}

		level, _ := fileConfig.Level()
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storePath, "path", "", "Store location (directory, or database file for sqlite)")
	rootCmd.PersistentFlags().StringVar(&adapterName, "adapter", "", "Storage adapter: fs, badger, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: studynotes.yaml at the store root)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Open the store read-only")
}

// loadSettings finds the store root and reads its config file, if any.
func loadSettings() error {
	fileConfig = platform.Config{}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	baseDir = cwd
	if root, err := platform.FindRoot(cwd); err == nil {
		baseDir = root
	}

	path := configPath
	if path == "" {
		candidate := filepath.Join(baseDir, platform.ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		return nil
	}

	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return err
	}
	fileConfig = cfg
	if configPath != "" {
		baseDir = filepath.Dir(configPath)
	}
	return nil
}

// adapter returns the adapter chosen by flag, then config, then default.
func adapter() string {
	switch {
	case adapterName != "":
		return adapterName
	case fileConfig.Adapter != "":
		return fileConfig.Adapter
	default:
		return studynotes.AdapterFS
	}
}

// storeURI returns the store location for the chosen adapter.
func storeURI(name string) string {
	if storePath != "" {
		return storePath
	}
	if p := fileConfig.StorePath(); p != "" {
		return p
	}
	dir := filepath.Join(baseDir, platform.SystemDir)
	switch name {
	case studynotes.AdapterBadger:
		return filepath.Join(dir, "badger")
	case studynotes.AdapterSQLite:
		return filepath.Join(dir, "studynotes.db")
	default:
		return dir
	}
}

// openService opens the configured store. Only init creates it.
func openService(autoInit bool, extra ...studynotes.Option) (*core.Service, error) {
	name := adapter()
	opts := fileConfig.Options()
	opts = append(opts,
		studynotes.WithAdapter(name),
		studynotes.WithAutoInit(autoInit),
		studynotes.WithMustExist(!autoInit),
		studynotes.WithLogger(slog.Default()),
	)
	if readOnly {
		opts = append(opts, studynotes.WithReadOnly(true))
	}
	opts = append(opts, extra...)

	svc, err := studynotes.New(storeURI(name), opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot open store (run 'studynotes init' first?): %w", err)
	}
	return svc, nil
}

// actionError is the one-line message shown for a failed action.
type actionError struct {
	action string
	err    error
	retry  bool
}

func (e *actionError) Error() string {
	if e.retry {
		return fmt.Sprintf("Failed to %s. Please try again. (%v)", e.action, e.err)
	}
	return fmt.Sprintf("Failed to %s: %v", e.action, e.err)
}

func (e *actionError) Unwrap() error { return e.err }

// failure wraps err for display. Validation, read-only and not-found
// errors are shown as they are; anything else suggests a retry.
func failure(action string, err error) error {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return &actionError{action: action, err: verr}
	case errors.Is(err, core.ErrReadOnly):
		return &actionError{action: action, err: core.ErrReadOnly}
	case errors.Is(err, core.ErrNotFound):
		return &actionError{action: action, err: err}
	default:
		slog.Debug("action failed", "action", action, "error", err)
		return &actionError{action: action, err: err, retry: true}
	}
}
