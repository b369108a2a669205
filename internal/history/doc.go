// Package history implements the per-project History Stack: a bounded undo
// stack, a redo stack, and the merge rule that folds consecutive edits of
// the same target into one undo step.
//
// A Stack is owned by one project and driven from the goroutine that owns
// that project's scene. It is not safe for concurrent use. Background
// writers get a Snapshot, which is a copy of both stacks; commands
// themselves are immutable values so the copy does not need to be deep.
//
// Recording rules:
//   - Push expects the command to be applied already. It merges into the
//     top entry when the kinds, targets and merge keys agree and the new
//     command falls inside the kind's merge window. Otherwise it appends,
//     evicts the oldest entry past the limit, and clears the redo stack.
//   - Undo reverts the top entry and moves it to the redo stack. Redo
//     applies the top redo entry and moves it back without merging.
//   - Pushes made while an Undo or Redo is running are ignored.
//   - An entry whose target is gone (command.ErrInvalidTarget) is dropped
//     and the operation moves on; neighbouring entries are untouched.
package history
