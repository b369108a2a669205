package persist

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/scene"
)

// Checkpoint is one unit of autosave: a history snapshot and, when set, the
// scene document it was taken against.
type Checkpoint struct {
	History history.Snapshot
	Scene   *scene.Document
}

// Autosaver mirrors history snapshots to a Store on a background goroutine.
//
// Schedule hands over a snapshot and returns immediately. Only the most
// recent snapshot is kept: if several arrive before the writer gets to them,
// the older ones are never written. With an interval the writer saves at
// most once per tick; without one it saves as soon as it wakes.
//
// A checkpoint carrying a scene document has the document written through
// the scene writer before the history, so the two never disagree by more
// than the write in flight.
//
// Write failures do not stop the writer. They go to the error callback as
// warnings and the snapshot is retried on the next wake unless a newer one
// has replaced it.
//
// Thread-safety: Schedule, Flush and Close are safe for concurrent use.
type Autosaver struct {
	store     Store
	projectID string
	clock     history.Clock
	interval  time.Duration
	logger    *slog.Logger
	onError   func(error)
	writeDoc  func(context.Context, scene.Document) error

	mu      sync.Mutex
	pending *Checkpoint
	gen     uint64 // bumped by every Schedule

	wake    chan struct{}
	flushes chan chan error
	stop    chan struct{}
	done    chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithInterval batches writes to at most one per d.
func WithInterval(d time.Duration) AutosaveOption {
	return func(a *Autosaver) { a.interval = d }
}

// WithErrorHandler receives write failures.
func WithErrorHandler(fn func(error)) AutosaveOption {
	return func(a *Autosaver) { a.onError = fn }
}

// WithSceneWriter sets where the scene document of a checkpoint goes.
// Without one, documents are ignored and only history is written.
func WithSceneWriter(fn func(context.Context, scene.Document) error) AutosaveOption {
	return func(a *Autosaver) { a.writeDoc = fn }
}

// WithAutosaveLogger sets the logger. The default is slog.Default().
func WithAutosaveLogger(l *slog.Logger) AutosaveOption {
	return func(a *Autosaver) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAutosaveClock sets the clock used for saved_at.
func WithAutosaveClock(c history.Clock) AutosaveOption {
	return func(a *Autosaver) { a.clock = c }
}

// NewAutosaver returns a stopped Autosaver for projectID. Call Start.
func NewAutosaver(st Store, projectID string, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		store:     st,
		projectID: projectID,
		clock:     history.SystemClock{},
		logger:    slog.Default(),
		onError:   func(error) {},
		wake:      make(chan struct{}, 1),
		flushes:   make(chan chan error),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start launches the writer goroutine. It stops when ctx is cancelled or
// Close is called.
func (a *Autosaver) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		a.started.Store(true)
		go a.run(ctx)
	})
}

// Schedule replaces the pending checkpoint with a history-only one.
func (a *Autosaver) Schedule(snap history.Snapshot) {
	a.ScheduleCheckpoint(Checkpoint{History: snap})
}

// ScheduleCheckpoint replaces the pending checkpoint with cp.
func (a *Autosaver) ScheduleCheckpoint(cp Checkpoint) {
	a.mu.Lock()
	a.pending = &cp
	a.gen++
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting to be written.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Flush writes the pending snapshot, if any, and waits for the write.
func (a *Autosaver) Flush(ctx context.Context) error {
	if !a.started.Load() {
		return a.write(ctx)
	}
	reply := make(chan error, 1)
	select {
	case a.flushes <- reply:
	case <-a.done:
		// writer gone; write from here
		return a.write(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes and stops the writer. It is safe to call more than once.
func (a *Autosaver) Close(ctx context.Context) error {
	err := a.Flush(ctx)
	a.stopOnce.Do(func() { close(a.stop) })
	a.startOnce.Do(func() { close(a.done) }) // never started
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (a *Autosaver) run(ctx context.Context) {
	defer close(a.done)

	var tick <-chan time.Time
	if a.interval > 0 {
		t := time.NewTicker(a.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case <-a.wake:
			if tick == nil {
				_ = a.write(ctx)
			}
		case <-tick:
			_ = a.write(ctx)
		case reply := <-a.flushes:
			reply <- a.write(ctx)
		}
	}
}

// write saves the pending checkpoint. On failure the checkpoint goes back
// to pending unless Schedule replaced it meanwhile.
func (a *Autosaver) write(ctx context.Context) error {
	a.mu.Lock()
	cp, gen := a.pending, a.gen
	a.pending = nil
	a.mu.Unlock()
	if cp == nil {
		return nil
	}

	err := a.save(ctx, *cp)
	if err == nil {
		a.logger.Debug("autosaved history", "project", a.projectID,
			"undo", len(cp.History.Undo), "redo", len(cp.History.Redo), "scene", cp.Scene != nil)
		return nil
	}

	a.mu.Lock()
	if a.gen == gen {
		a.pending = cp
	}
	a.mu.Unlock()
	a.logger.Warn("autosave failed", "project", a.projectID, "error", err)
	a.onError(err)
	return err
}

func (a *Autosaver) save(ctx context.Context, cp Checkpoint) error {
	if cp.Scene != nil && a.writeDoc != nil {
		if err := a.writeDoc(ctx, *cp.Scene); err != nil {
			return err
		}
	}
	data, err := Encode(a.projectID, cp.History, a.clock.Now())
	if err != nil {
		return err
	}
	return a.store.SaveHistory(ctx, a.projectID, data)
}
