package project

import (
	"log/slog"
	"time"

	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/scene"
)

type options struct {
	store        persist.Store
	logger       *slog.Logger
	clock        history.Clock
	ids          scene.IDGenerator
	sealRestored bool
	autosave     bool
	interval     time.Duration
	history      []history.Option
}

// Option configures Create and Open.
type Option func(*options)

// WithStore sets where history is kept. The default is a persist.FileStore
// on the project root.
func WithStore(st persist.Store) Option {
	return func(o *options) { o.store = st }
}

// WithLogger sets the logger for the project and everything it owns.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock that stamps commands and saved blobs.
func WithClock(c history.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithIDs sets the generator for the project ID and new entity IDs.
func WithIDs(g scene.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithSealRestored makes loaded history refuse merges into its top entry.
func WithSealRestored(on bool) Option {
	return func(o *options) { o.sealRestored = on }
}

// WithAutosave mirrors every history change to the store in the background.
// interval > 0 batches writes to one per interval.
func WithAutosave(interval time.Duration) Option {
	return func(o *options) {
		o.autosave = true
		o.interval = interval
	}
}

// WithHistoryOptions passes options through to history.New.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(o *options) { o.history = append(o.history, opts...) }
}

func buildOptions(root string, opts []Option) options {
	o := options{
		logger: slog.Default(),
		clock:  history.SystemClock{},
		ids:    scene.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = persist.NewFileStore(root)
	}
	return o
}
