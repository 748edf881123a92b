package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of the options, read from studynotes.yaml.
// Unset fields leave the corresponding option at its default.
type Config struct {
	Adapter     string        `yaml:"adapter,omitempty"`
	Path        string        `yaml:"path,omitempty"`
	ReadOnly    *bool         `yaml:"read_only,omitempty"`
	StrictLoad  *bool         `yaml:"strict_load,omitempty"`
	SampleNotes *bool         `yaml:"sample_notes,omitempty"`
	DevSafety   *bool         `yaml:"dev_safety,omitempty"`
	EventBuffer int           `yaml:"event_buffer,omitempty"`
	Debounce    time.Duration `yaml:"debounce,omitempty"`
	LogLevel    string        `yaml:"log_level,omitempty"`

	// dir is where the file was found; relative paths resolve against it.
	dir string
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Adapter {
	case "", AdapterFS, AdapterBadger, AdapterSQLite, AdapterMemory:
	default:
		return Config{}, fmt.Errorf("config %s: unknown adapter %q", path, cfg.Adapter)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// StorePath returns the configured storage path, resolved against the
// directory of the config file. Empty when no path was configured.
func (c Config) StorePath() string {
	if c.Path == "" || filepath.IsAbs(c.Path) || c.dir == "" {
		return c.Path
	}
	return filepath.Join(c.dir, c.Path)
}

// Level parses LogLevel. An empty level is Info.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}

// Options converts the file settings to options. Options passed after
// these override them.
func (c Config) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.ReadOnly != nil {
		opts = append(opts, WithReadOnly(*c.ReadOnly))
	}
	if c.StrictLoad != nil {
		opts = append(opts, WithStrictLoad(*c.StrictLoad))
	}
	if c.SampleNotes != nil {
		opts = append(opts, WithSampleNotes(*c.SampleNotes))
	}
	if c.DevSafety != nil {
		opts = append(opts, WithDevSafety(*c.DevSafety))
	}
	if c.EventBuffer > 0 {
		opts = append(opts, WithEventBuffer(c.EventBuffer))
	}
	if c.Debounce > 0 {
		opts = append(opts, WithDebounce(c.Debounce))
	}
	return opts
}

// WriteConfig stores cfg as studynotes.yaml in dir and returns the file path.
func WriteConfig(dir string, cfg Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
