// Package intercept is the only user-facing way to mutate a scene.
//
// Every Editor method checks editor policy (locks, duplicates, self-loops),
// captures the before state, and records exactly one command on the
// History Stack, or none when the call is rejected or changes nothing.
//
// Drags are gestures: BeginMove captures the start, DragTo moves the target
// live without recording, and EndMove records a single move spanning the
// whole drag. Any other Editor call, Undo and Redo included, commits a
// pending gesture first.
package intercept
