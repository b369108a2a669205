package history

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// Stack is the undo/redo history of one open project.
type Stack struct {
	scene *scene.Scene
	undo  []command.Command // bottom -> top
	redo  []command.Command // bottom -> top; top is the next redo

	limit   int
	windows map[command.Kind]time.Duration

	// sealed closes the merge window of the current top entry.
	sealed bool

	// replaying is set while Undo or Redo runs a transition.
	replaying bool

	logger    *slog.Logger
	observers []Observer
}

// New returns an empty Stack over s.
func New(s *scene.Scene, opts ...Option) *Stack {
	h := &Stack{
		scene:   s,
		limit:   DefaultLimit,
		windows: make(map[command.Kind]time.Duration),
		logger:  slog.Default(),
	}
	for _, k := range command.Kinds() {
		h.windows[k] = command.MergeWindow(k)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Scene returns the scene the stack records against.
func (h *Stack) Scene() *scene.Scene { return h.scene }

// Limit returns the maximum undo depth.
func (h *Stack) Limit() int { return h.limit }

// Window returns the merge window in effect for kind k.
func (h *Stack) Window(k command.Kind) time.Duration { return h.windows[k] }

// Execute applies c to the scene and records it.
func (h *Stack) Execute(c command.Command) error {
	if h.replaying {
		h.logger.Debug("execute ignored during replay", "kind", c.Kind, "target", c.Target)
		return nil
	}
	if err := c.Apply(h.scene); err != nil {
		return err
	}
	h.Push(c)
	return nil
}

// Push records an already-applied command. It reports whether c was merged
// into the previous entry.
func (h *Stack) Push(c command.Command) bool {
	if h.replaying {
		h.logger.Debug("push ignored during replay", "kind", c.Kind, "target", c.Target)
		return false
	}

	if n := len(h.undo); n > 0 && !h.sealed {
		top := h.undo[n-1]
		if top.CanMergeWith(c, h.windows[c.Kind]) {
			h.undo[n-1] = top.MergeWith(c)
			cleared := h.dropRedo()
			h.logger.Debug("merged", "kind", c.Kind, "target", c.Target)
			h.emit(EventMerge, h.undo[n-1], nil)
			if cleared {
				h.emit(EventClear, command.Command{}, nil)
			}
			return true
		}
	}

	h.undo = append(h.undo, c)
	h.sealed = false

	// Only index 0 is evicted and the merge target is always the top, so
	// with limit >= 1 an eviction never removes an entry still accepting
	// merges.
	var evicted []command.Command
	for len(h.undo) > h.limit {
		evicted = append(evicted, h.undo[0])
		h.undo = slices.Delete(h.undo, 0, 1)
	}
	cleared := h.dropRedo()

	h.logger.Debug("pushed", "kind", c.Kind, "target", c.Target, "depth", len(h.undo))
	h.emit(EventPush, c, nil)
	for _, e := range evicted {
		h.emit(EventEvict, e, nil)
	}
	if cleared {
		h.emit(EventClear, command.Command{}, nil)
	}
	return false
}

// dropRedo empties the redo stack and reports whether it held anything.
func (h *Stack) dropRedo() bool {
	if len(h.redo) == 0 {
		return false
	}
	h.redo = nil
	return true
}

// Undo reverts the top entry and moves it to the redo stack. An empty stack
// is a no-op. An entry whose target no longer exists is dropped.
func (h *Stack) Undo() error {
	n := len(h.undo)
	if n == 0 || h.replaying {
		return nil
	}
	c := h.undo[n-1]
	if err := h.replay(c.Revert); err != nil {
		if !droppable(err) {
			return err
		}
		h.undo = h.undo[:n-1]
		h.drop(c, err)
		return nil
	}
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, c)
	h.sealed = true
	h.emit(EventUndo, c, nil)
	return nil
}

// Redo re-applies the most recently undone entry. It never merges.
func (h *Stack) Redo() error {
	n := len(h.redo)
	if n == 0 || h.replaying {
		return nil
	}
	c := h.redo[n-1]
	if err := h.replay(c.Apply); err != nil {
		if !droppable(err) {
			return err
		}
		h.redo = h.redo[:n-1]
		h.drop(c, err)
		return nil
	}
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, c)
	h.sealed = true
	h.emit(EventRedo, c, nil)
	return nil
}

func (h *Stack) replay(fn func(*scene.Scene) error) error {
	h.replaying = true
	defer func() { h.replaying = false }()
	return fn(h.scene)
}

// droppable reports whether err means the entry can never succeed.
func droppable(err error) bool {
	return errors.Is(err, command.ErrInvalidTarget) || errors.Is(err, command.ErrBadState)
}

func (h *Stack) drop(c command.Command, err error) {
	h.logger.Warn("dropped history entry", "kind", c.Kind, "target", c.Target, "error", err)
	h.emit(EventDrop, c, err)
}

// CanUndo reports whether Undo has anything to do.
func (h *Stack) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has anything to do.
func (h *Stack) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen returns the depth of the undo stack.
func (h *Stack) UndoLen() int { return len(h.undo) }

// RedoLen returns the depth of the redo stack.
func (h *Stack) RedoLen() int { return len(h.redo) }

// Top returns the entry the next Undo would revert.
func (h *Stack) Top() (command.Command, bool) {
	if len(h.undo) == 0 {
		return command.Command{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// Seal closes the merge window of the top entry; the next push starts a new
// entry regardless of timing.
func (h *Stack) Seal() { h.sealed = true }

// Sealed reports whether the top entry still accepts merges.
func (h *Stack) Sealed() bool { return h.sealed }

// Clear drops both stacks.
func (h *Stack) Clear() {
	h.undo = nil
	h.redo = nil
	h.sealed = false
	h.emit(EventClear, command.Command{}, nil)
}

// Snapshot is a copy of both stacks, bottom to top.
type Snapshot struct {
	Undo []command.Command
	Redo []command.Command
}

// Snapshot copies both stacks. The copy shares Command values, which are
// never mutated once recorded.
func (h *Stack) Snapshot() Snapshot {
	return Snapshot{
		Undo: slices.Clone(h.undo),
		Redo: slices.Clone(h.redo),
	}
}

// Restore replaces both stacks with snap. If snap.Undo is deeper than the
// limit the oldest entries are discarded. When seal is set the restored top
// entry does not accept merges.
func (h *Stack) Restore(snap Snapshot, seal bool) {
	undo := slices.Clone(snap.Undo)
	if over := len(undo) - h.limit; over > 0 {
		undo = slices.Delete(undo, 0, over)
	}
	h.undo = undo
	h.redo = slices.Clone(snap.Redo)
	h.sealed = seal
	h.logger.Debug("restored", "undo", len(h.undo), "redo", len(h.redo))
	h.emit(EventRestore, command.Command{}, nil)
}

func (h *Stack) emit(t EventType, c command.Command, err error) {
	if len(h.observers) == 0 {
		return
	}
	e := Event{Type: t, Command: c, UndoLen: len(h.undo), RedoLen: len(h.redo), Err: err}
	for _, o := range h.observers {
		o.Observe(e)
	}
}
