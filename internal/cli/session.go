package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/config"
	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/metrics"
	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/project"
	"github.com/roach88/trellis/internal/store"
)

// session is what every project command needs: resolved config, a logger,
// an open history store and the formatter for its output.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	store   persist.Store
	metrics *metrics.Collector
	out     *OutputFormatter

	closeStore func() error
}

// loadConfig reads the config file, applies TRELLIS_* variables from lookup
// and then the command-line flags.
func loadConfig(opts *RootOptions, lookup config.LookupFunc) (config.Config, error) {
	cfg, err := config.LoadWith(opts.Config, lookup)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Store != "" {
		cfg.Storage.Backend = opts.Store
	}
	if opts.DB != "" {
		cfg.Storage.DB = opts.DB
	}
	if opts.Root != "" {
		cfg.Storage.Root = opts.Root
	}
	return cfg, nil
}

// newLogger writes to w in the configured format. --verbose forces debug.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openStore returns the configured history backend and its closer.
func openStore(cfg config.StorageConfig) (persist.Store, func() error, error) {
	if cfg.Backend == "sqlite" {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return persist.NewFileStore(cfg.Root), func() error { return nil }, nil
}

func newSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)

	st, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeStore, "failed to open history store", err)
	}
	logger.Debug("session ready", "backend", cfg.Storage.Backend, "root", cfg.Storage.Root)

	return &session{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		metrics:    metrics.NewCollector("trellis"),
		out:        out,
		closeStore: closeStore,
	}, nil
}

func (s *session) close() {
	if err := s.closeStore(); err != nil {
		s.logger.Error("error closing history store", "error", err)
	}
}

// projectOptions turns the config into project options. The metrics
// collector observes every history change.
func (s *session) projectOptions() []project.Option {
	w := s.cfg.History.Window()
	opts := []project.Option{
		project.WithStore(s.store),
		project.WithLogger(s.logger),
		project.WithSealRestored(s.cfg.History.SealRestored),
		project.WithHistoryOptions(
			history.WithLimit(s.cfg.History.Limit),
			history.WithMergeWindow(command.KindMove, w),
			history.WithMergeWindow(command.KindEditText, w),
			history.WithObserver(s.metrics),
		),
	}
	if s.cfg.Storage.Autosave {
		opts = append(opts, project.WithAutosave(s.cfg.Storage.AutosaveInterval()))
	}
	return opts
}
