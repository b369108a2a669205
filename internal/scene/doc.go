// Package scene holds the entities of a canvas and the raw mutations that
// History Stack commands are built from.
//
// A Scene is owned by exactly one open project and is mutated only from the
// goroutine that owns that project (the UI goroutine). There is no locking.
//
// The mutation methods here are primitives. They do not record history and
// they do not enforce editor policy such as locks; internal/command layers
// those rules on top and internal/intercept is the only user-facing entry
// point. Getters return deep copies so callers can keep them as immutable
// snapshots.
//
// Primitives are strict about attachments: a node with incident edges or a
// group membership cannot be removed, an edge with waypoints cannot be
// removed, and a group with members cannot be removed. Callers detach first,
// which keeps every dependent change visible in the command that caused it.
package scene
