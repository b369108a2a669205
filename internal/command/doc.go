// Package command defines the reversible unit of change recorded by the
// History Stack.
//
// A Command is a tagged variant: Kind selects an entry in a fixed dispatch
// table that knows how to move the target between two States, how to decode
// those States from persisted history, and how long the kind's merge window
// is. Apply moves the target from Before to After, Revert moves it back.
// Both are idempotent: calling either when the target is already in the
// destination state does nothing.
//
// Commands are values. Once pushed onto the History Stack they are never
// mutated; MergeWith returns a new Command. This lets a background writer
// hold a snapshot of the stack without synchronization.
//
// Error contract:
//   - ErrInvalidTarget: the target (or an entity it must restore against) is
//     not in the scene. The scene is left untouched.
//   - ErrLocked: a membership change into or out of a locked group.
//   - ErrBadState: the States do not match the Kind (corrupt history).
//   - ErrUnknownKind: the Kind is not in the dispatch table.
package command
