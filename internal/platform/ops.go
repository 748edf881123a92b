package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/studynotes/pkg/adapters/badger"
	"github.com/aretw0/studynotes/pkg/adapters/fs"
	"github.com/aretw0/studynotes/pkg/adapters/memory"
	"github.com/aretw0/studynotes/pkg/adapters/sqlite"
	"github.com/aretw0/studynotes/pkg/core"
)

// Init opens and initializes the store selected by the options.
// The uri argument is adapter-specific: a directory for fs and badger, a
// database file for sqlite, ignored for memory.
func Init(uri string, opts ...Option) (core.Store, error) {
	o := parse(opts)

	if o.store != nil {
		return o.store, nil
	}

	var (
		store core.Store
		err   error
	)
	switch o.adapter {
	case AdapterFS:
		store, err = initFS(uri, o)
	case AdapterBadger:
		store, err = initBadger(uri, o)
	case AdapterSQLite:
		store, err = initSQLite(uri, o)
	case AdapterMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// resolvePath applies the dev-safety sandbox to a user supplied path.
func resolvePath(path string, o *options) (string, bool) {
	isReadOnly := o.flag("read_only")

	// Read-only access is inherently safe, as is an explicit opt-out.
	bypassSafety := isReadOnly || !o.devSafety()

	useTemp := o.flag("temp_dir") || (IsDevRun() && !bypassSafety)
	resolved := ResolveStorePath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if o.logger != nil && useTemp && resolved != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved, useTemp
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Store, error) {
	resolved, useTemp := resolvePath(path, o)

	eventBuffer, _ := o.config["event_buffer"].(int)
	debounce, _ := o.config["debounce"].(time.Duration)

	return fs.NewStore(fs.Config{
		Path:         resolved,
		MustExist:    o.flag("must_exist") || (!o.flag("auto_init") && !useTemp),
		ReadOnly:     o.flag("read_only"),
		Logger:       o.logger,
		ErrorHandler: o.errorHandler(),
		EventBuffer:  eventBuffer,
		Debounce:     debounce,
	}), nil
}

func initBadger(path string, o *options) (core.Store, error) {
	resolved, useTemp := resolvePath(path, o)
	if err := checkExists(resolved, o, useTemp); err != nil {
		return nil, err
	}

	cfg := badger.DefaultConfig(resolved)
	cfg.ReadOnly = o.flag("read_only")
	cfg.Logger = o.logger
	return badger.NewStore(cfg), nil
}

func initSQLite(path string, o *options) (core.Store, error) {
	if path == "" {
		path = "studynotes.db"
	}
	resolved, useTemp := resolvePath(path, o)
	if err := checkExists(resolved, o, useTemp); err != nil {
		return nil, err
	}
	if !o.flag("read_only") {
		if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	return sqlite.NewStore(sqlite.Config{
		Path:     resolved,
		ReadOnly: o.flag("read_only"),
		Logger:   o.logger,
	}), nil
}

// checkExists enforces MustExist for adapters that would otherwise create
// their storage on open.
func checkExists(path string, o *options, useTemp bool) error {
	mustExist := o.flag("must_exist") || (!o.flag("auto_init") && !useTemp)
	if !mustExist {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("store path does not exist: %s", path)
	}
	return nil
}
