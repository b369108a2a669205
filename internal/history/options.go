package history

import (
	"log/slog"
	"time"

	"github.com/roach88/trellis/internal/command"
)

// DefaultLimit is the maximum number of undo entries kept per project.
const DefaultLimit = 100

// Clock is the source of wall time. Tests use a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Option configures a Stack.
type Option func(*Stack)

// WithLimit sets the maximum undo depth. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(h *Stack) {
		if n >= 1 {
			h.limit = n
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Stack) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(h *Stack) {
		h.observers = append(h.observers, o)
	}
}

// WithMergeWindow overrides the merge window of one kind. A zero window
// disables merging for that kind.
func WithMergeWindow(k command.Kind, d time.Duration) Option {
	return func(h *Stack) {
		h.windows[k] = d
	}
}
