package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/trellis/internal/scene"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Op, event.Outcome)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, r *runner) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, r); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, r *runner) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	id, err := r.alias(a.ID)
	if err != nil {
		return fail(fmt.Sprintf("alias %s bound", a.ID), err.Error())
	}
	sc := r.stack.Scene()

	switch a.Type {
	case AssertUndoDepth:
		if got := r.stack.UndoLen(); got != a.Count {
			return fail(fmt.Sprintf("undo depth %d", a.Count), fmt.Sprintf("undo depth %d", got))
		}
	case AssertRedoDepth:
		if got := r.stack.RedoLen(); got != a.Count {
			return fail(fmt.Sprintf("redo depth %d", a.Count), fmt.Sprintf("redo depth %d", got))
		}
	case AssertExists:
		if !sc.Has(id) {
			return fail(id+" in scene", "absent")
		}
	case AssertAbsent:
		if sc.Has(id) {
			return fail(id+" absent", "present")
		}
	case AssertPosition:
		p, ok := sc.Position(id)
		want := scene.Point{X: *a.X, Y: *a.Y}
		if !ok {
			return fail(fmt.Sprintf("%s at %v", id, want), "absent")
		}
		if p != want {
			return fail(fmt.Sprintf("%s at %v", id, want), fmt.Sprintf("at %v", p))
		}
	case AssertText:
		field := a.Field
		if field == "" {
			field = scene.FieldTitle
		}
		ts, err := sc.Text(scene.TextRef{Target: id, Field: field})
		if err != nil {
			return fail(fmt.Sprintf("%s/%s = %q", id, field, *a.Text), err.Error())
		}
		if ts.Value != *a.Text {
			return fail(fmt.Sprintf("%s/%s = %q", id, field, *a.Text), fmt.Sprintf("%q", ts.Value))
		}
	case AssertFlagged:
		on, err := sc.Flagged(id)
		if err != nil {
			return fail(fmt.Sprintf("%s flagged=%t", id, *a.On), err.Error())
		}
		if on != *a.On {
			return fail(fmt.Sprintf("%s flagged=%t", id, *a.On), fmt.Sprintf("flagged=%t", on))
		}
	case AssertLocked:
		on, err := sc.Locked(id)
		if err != nil {
			return fail(fmt.Sprintf("%s locked=%t", id, *a.On), err.Error())
		}
		if on != *a.On {
			return fail(fmt.Sprintf("%s locked=%t", id, *a.On), fmt.Sprintf("locked=%t", on))
		}
	case AssertMemberOf:
		want, err := r.alias(*a.Group)
		if err != nil {
			return fail("group alias bound", err.Error())
		}
		if got, _ := sc.Membership(id); got != want {
			return fail(fmt.Sprintf("%s in group %q", id, want), fmt.Sprintf("in group %q", got))
		}
	case AssertHistory:
		got := undoKinds(r)
		if !slices.Equal(got, a.Kinds) {
			return fail(fmt.Sprintf("undo stack %v", a.Kinds), fmt.Sprintf("undo stack %v", got))
		}
	case AssertTraceCount:
		n := 0
		for _, ev := range result.Trace {
			if ev.Op == a.Op {
				n++
			}
		}
		if n != a.Count {
			return fail(fmt.Sprintf("%d %s steps", a.Count, a.Op), fmt.Sprintf("%d", n))
		}
	}
	return nil
}

func undoKinds(r *runner) []string {
	snap := r.stack.Snapshot()
	kinds := make([]string, 0, len(snap.Undo))
	for _, c := range snap.Undo {
		kinds = append(kinds, string(c.Kind))
	}
	return kinds
}
