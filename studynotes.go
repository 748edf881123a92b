package studynotes

import (
	"log/slog"
	"time"

	"github.com/aretw0/studynotes/internal/platform"
	"github.com/aretw0/studynotes/pkg/core"
)

// --- Types ---

// Service is the persistence service for subjects and notes.
type Service = core.Service

// Subject is a named category of notes.
type Subject = core.Subject

// Note is a single study note.
type Note = core.Note

// Config is the on-disk form of the options (studynotes.yaml).
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterBadger = platform.AdapterBadger
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithAutoInit creates the storage location when it does not exist yet.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the storage location must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithEventBuffer sets the size of the watch event channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithDebounce sets the fs watcher's coalescing delay.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithErrorHandler registers a callback for failures not returned to a caller.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithStrictLoad makes mutations abort on unreadable collections.
func WithStrictLoad(strict bool) Option {
	return platform.WithStrictLoad(strict)
}

// WithSampleNotes makes seeding also store the sample notes.
func WithSampleNotes(enabled bool) Option {
	return platform.WithSampleNotes(enabled)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a new Service.
func New(uri string, opts ...Option) (*core.Service, error) {
	return platform.New(uri, opts...)
}

// Init opens the configured store without wrapping it in a Service.
func Init(uri string, opts ...Option) (core.Store, error) {
	return platform.Init(uri, opts...)
}

// LoadConfig reads a studynotes.yaml file.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual storage path based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a .studynotes directory or studynotes.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
