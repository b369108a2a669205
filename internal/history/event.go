package history

import "github.com/roach88/trellis/internal/command"

// EventType names what happened to the stack.
type EventType string

const (
	EventPush    EventType = "push"
	EventMerge   EventType = "merge"
	EventUndo    EventType = "undo"
	EventRedo    EventType = "redo"
	EventEvict   EventType = "evict"
	EventDrop    EventType = "drop"
	EventClear   EventType = "clear"
	EventRestore EventType = "restore"
)

// Event is delivered to observers after the stack has changed. UndoLen and
// RedoLen are the depths once the whole operation is done.
type Event struct {
	Type    EventType
	Command command.Command
	UndoLen int
	RedoLen int

	// Err is set for EventDrop.
	Err error
}

// Observer is notified of stack changes. Observers run synchronously on the
// caller's goroutine once the change is complete. They may read the Stack
// but must not modify it.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
