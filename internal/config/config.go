package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidConfig wraps every schema, parse and override failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the decoded #Config.
type Config struct {
	History HistoryConfig `json:"history"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
	Keys    KeysConfig    `json:"keys"`
}

type HistoryConfig struct {
	Limit        int    `json:"limit"`
	MergeWindow  string `json:"merge_window"`
	SealRestored bool   `json:"seal_restored"`
}

// Window returns MergeWindow as a duration. Load has already checked that
// it parses.
func (h HistoryConfig) Window() time.Duration {
	d, _ := time.ParseDuration(h.MergeWindow)
	return d
}

type StorageConfig struct {
	Backend  string `json:"backend"`
	Root     string `json:"root"`
	DB       string `json:"db"`
	Autosave bool   `json:"autosave"`
	Interval string `json:"interval"`
}

// AutosaveInterval returns Interval as a duration.
func (s StorageConfig) AutosaveInterval() time.Duration {
	d, _ := time.ParseDuration(s.Interval)
	return d
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SlogLevel maps Level to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type KeysConfig struct {
	Undo   []string `json:"undo"`
	Redo   []string `json:"redo"`
	Delete []string `json:"delete"`
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(string) (string, bool)

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

// overrides lists the environment variables and the field each one sets.
func (c *Config) overrides() []struct {
	name string
	set  func(string) error
} {
	return []struct {
		name string
		set  func(string) error
	}{
		{"TRELLIS_HISTORY_LIMIT", setInt(&c.History.Limit)},
		{"TRELLIS_MERGE_WINDOW", setString(&c.History.MergeWindow)},
		{"TRELLIS_SEAL_RESTORED", setBool(&c.History.SealRestored)},
		{"TRELLIS_STORE", setString(&c.Storage.Backend)},
		{"TRELLIS_ROOT", setString(&c.Storage.Root)},
		{"TRELLIS_DB", setString(&c.Storage.DB)},
		{"TRELLIS_AUTOSAVE", setBool(&c.Storage.Autosave)},
		{"TRELLIS_LOG_LEVEL", setString(&c.Log.Level)},
		{"TRELLIS_LOG_FORMAT", setString(&c.Log.Format)},
	}
}

// Default returns the schema defaults with no file and no environment.
func Default() Config {
	cfg, err := build(nil, "", func(string) (string, bool) { return "", false })
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema defaults invalid: %v", err))
	}
	return cfg
}

// Load reads path (optional; "" means defaults only) and applies
// environment overrides from the process environment.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment.
func LoadWith(path string, lookup LookupFunc) (Config, error) {
	var src []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		src = data
	}
	return build(src, path, lookup)
}

// Parse validates src as a config file without consulting the environment.
func Parse(src []byte) (Config, error) {
	return build(src, "config.cue", func(string) (string, bool) { return "", false })
}

func build(src []byte, filename string, lookup LookupFunc) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if len(src) > 0 {
		file := ctx.CompileBytes(src, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return Config{}, invalid(err)
		}
		v = v.Unify(file)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, invalid(err)
	}
	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, invalid(err)
	}

	overridden := false
	for _, o := range cfg.overrides() {
		raw, ok := lookup(o.name)
		if !ok || raw == "" {
			continue
		}
		if err := o.set(raw); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, o.name, err)
		}
		overridden = true
	}
	if overridden {
		// overrides go through the same schema as the file
		check := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(cfg))
		if err := check.Validate(cue.Concrete(true)); err != nil {
			return Config{}, invalid(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, cueerrors.Details(err, nil))
}

// Validate checks what the schema cannot express.
func (c Config) Validate() error {
	if _, err := time.ParseDuration(c.History.MergeWindow); err != nil {
		return fmt.Errorf("%w: history.merge_window: %v", ErrInvalidConfig, err)
	}
	if _, err := time.ParseDuration(c.Storage.Interval); err != nil {
		return fmt.Errorf("%w: storage.interval: %v", ErrInvalidConfig, err)
	}
	return nil
}
