// Package harness runs editing scenarios against the undo engine.
//
// A scenario is a YAML script of editor operations followed by assertions
// on the final scene and history:
//
//	name: nudge_then_undo
//	description: "Three nudges inside the window undo in one step"
//	steps:
//	  - op: create_node
//	    args: { kind: pipeline_module, title: Load, x: 0, y: 0 }
//	    as: a
//	  - op: nudge
//	    args: { id: $a, dx: 10, dy: 0 }
//	  - op: undo
//	assertions:
//	  - type: position
//	    id: $a
//	    x: 0
//	    y: 0
//	  - type: undo_depth
//	    count: 1
//
// String arguments starting with "$" refer to the ID an earlier step bound
// with "as". A step without "expect" must succeed; otherwise expect names
// the outcome, such as "locked" or "invalid_target".
//
// # Assertion Types
//
//   - undo_depth, redo_depth: stack depth equals count
//   - exists, absent: entity id is or is not in the scene
//   - position: entity id sits at x, y
//   - text: field of id (default title) has value text
//   - flagged, locked: flag of id equals on
//   - member_of: node id belongs to group ("" for none)
//   - history: kinds of the undo stack, bottom to top
//   - trace_count: op appears count times in the trace
//
// # Deterministic Testing
//
// Every run uses a fake clock starting at testutil.Epoch that only moves on
// "advance" steps, and sequential IDs (id-1, id-2, ...). The same scenario
// always produces the same trace, which RunWithGolden compares to
// testdata/golden/<name>.golden.
package harness
