package intercept

import (
	"fmt"
	"log/slog"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/scene"
)

// Editor routes user mutations into commands.
//
// Thread-safety: none. An Editor belongs to the goroutine that owns its
// project's scene.
type Editor struct {
	scene  *scene.Scene
	stack  *history.Stack
	clock  history.Clock
	ids    scene.IDGenerator
	logger *slog.Logger

	gesture   *gesture
	selection []string
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock sets the clock that stamps commands.
func WithClock(c history.Clock) Option {
	return func(e *Editor) { e.clock = c }
}

// WithIDs sets the generator for new entity IDs.
func WithIDs(g scene.IDGenerator) Option {
	return func(e *Editor) { e.ids = g }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Editor recording onto stack.
func New(stack *history.Stack, opts ...Option) *Editor {
	e := &Editor{
		scene:  stack.Scene(),
		stack:  stack,
		clock:  history.SystemClock{},
		ids:    scene.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scene returns the edited scene. Callers must treat it as read-only.
func (e *Editor) Scene() *scene.Scene { return e.scene }

// History returns the stack the editor records onto.
func (e *Editor) History() *history.Stack { return e.stack }

// Undo commits any pending gesture and undoes the top entry.
func (e *Editor) Undo() error {
	if err := e.commit(); err != nil {
		return err
	}
	return e.stack.Undo()
}

// Redo commits any pending gesture and redoes the last undone entry.
func (e *Editor) Redo() error {
	if err := e.commit(); err != nil {
		return err
	}
	return e.stack.Redo()
}

func (e *Editor) CanUndo() bool { return e.stack.CanUndo() }
func (e *Editor) CanRedo() bool { return e.stack.CanRedo() }

// exec commits a pending gesture, then applies and records c.
func (e *Editor) exec(c command.Command) error {
	if err := e.commit(); err != nil {
		return err
	}
	return e.record(c)
}

func (e *Editor) record(c command.Command) error {
	if err := e.stack.Execute(c); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	e.logger.Debug("recorded", "kind", c.Kind, "target", c.Target)
	return nil
}

// newID returns a fresh entity ID, refusing one the scene has seen before.
func (e *Editor) newID() (string, error) {
	id := e.ids.NewID()
	if e.scene.Seen(id) {
		return "", fmt.Errorf("%s: %w", id, ErrIDReused)
	}
	return id, nil
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, scene.ErrNotFound)
}

func locked(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, command.ErrLocked)
}
