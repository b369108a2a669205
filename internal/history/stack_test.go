package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
	"github.com/roach88/trellis/internal/testutil"
)

type harness struct {
	t     *testing.T
	s     *scene.Scene
	h     *Stack
	clock *testutil.FakeClock
	log   []Event
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	x := &harness{t: t, s: scene.New(), clock: testutil.NewFakeClock(time.Time{})}
	require.NoError(t, x.s.InsertNode(scene.Node{ID: "a", Kind: scene.KindPipelineModule}))
	require.NoError(t, x.s.InsertNode(scene.Node{ID: "b", Kind: scene.KindPipelineModule}))
	opts = append(opts, WithObserver(ObserverFunc(func(e Event) { x.log = append(x.log, e) })))
	x.h = New(x.s, opts...)
	return x
}

// move builds and executes a move of id by (dx, dy).
func (x *harness) move(id string, dx, dy float64) {
	x.t.Helper()
	from, ok := command.CapturePlacement(x.s, id)
	require.True(x.t, ok)
	to := command.Placement{Position: from.Position.Add(dx, dy)}
	require.NoError(x.t, x.h.Execute(command.NewMove(id, from, to, x.clock.Now())))
}

func (x *harness) flag(id string) {
	x.t.Helper()
	on, err := x.s.Flagged(id)
	require.NoError(x.t, err)
	require.NoError(x.t, x.h.Execute(command.NewToggleFlag(id, on, x.clock.Now())))
}

func (x *harness) type_(id, value string) {
	x.t.Helper()
	ref := scene.TextRef{Target: id, Field: scene.FieldTitle}
	from, err := x.s.Text(ref)
	require.NoError(x.t, err)
	n := len([]rune(value))
	to := scene.TextState{Value: value, Cursor: n, Anchor: n}
	require.NoError(x.t, x.h.Execute(command.NewEditText(ref, from, to, x.clock.Now())))
}

func (x *harness) pos(id string) scene.Point {
	x.t.Helper()
	p, ok := x.s.Position(id)
	require.True(x.t, ok)
	return p
}

func (x *harness) types() []EventType {
	out := make([]EventType, 0, len(x.log))
	for _, e := range x.log {
		out = append(out, e.Type)
	}
	return out
}

func TestUndoRedo_EmptyIsNoop(t *testing.T) {
	x := newHarness(t)
	assert.False(t, x.h.CanUndo())
	assert.False(t, x.h.CanRedo())
	assert.NoError(t, x.h.Undo())
	assert.NoError(t, x.h.Redo())
	assert.Empty(t, x.log)
}

func TestUndo_FullRoundTrip(t *testing.T) {
	x := newHarness(t)
	initial := x.s.Document()

	const n = 12
	for i := 0; i < n; i++ {
		x.clock.Advance(5 * time.Second) // outside every merge window
		switch i % 3 {
		case 0:
			x.move("a", float64(i), 1)
		case 1:
			x.flag("b")
		case 2:
			x.type_("a", fmt.Sprintf("title %d", i))
		}
	}
	require.Equal(t, n, x.h.UndoLen())

	for i := 0; i < n; i++ {
		require.NoError(t, x.h.Undo())
	}
	assert.Equal(t, initial, x.s.Document())
	assert.False(t, x.h.CanUndo())
	assert.Equal(t, n, x.h.RedoLen())
}

func TestPush_MergesWithinWindow(t *testing.T) {
	x := newHarness(t)
	start := x.pos("a")

	x.move("a", 10, 10)
	x.clock.Advance(time.Second)
	x.move("a", 10, 10)
	x.clock.Advance(time.Second)
	x.move("a", 10, 10)

	assert.Equal(t, 1, x.h.UndoLen())
	assert.Equal(t, start.Add(30, 30), x.pos("a"))

	require.NoError(t, x.h.Undo())
	assert.Equal(t, start, x.pos("a"))
	assert.False(t, x.h.CanUndo())
	assert.Equal(t, []EventType{EventPush, EventMerge, EventMerge, EventUndo}, x.types())
}

func TestPush_WindowSlides(t *testing.T) {
	x := newHarness(t)
	for _, v := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		x.type_("a", v)
		x.clock.Advance(2 * time.Second)
	}
	// 8s from first to last keystroke, never more than 2s between two
	assert.Equal(t, 1, x.h.UndoLen())

	require.NoError(t, x.h.Undo())
	n, _ := x.s.Node("a")
	assert.Equal(t, scene.TextState{}, n.Title)
}

func TestPush_WindowExpired(t *testing.T) {
	x := newHarness(t)
	x.move("a", 1, 0)
	x.clock.Advance(3*time.Second + time.Millisecond)
	x.move("a", 1, 0)
	assert.Equal(t, 2, x.h.UndoLen())
}

func TestPush_NonMergeableNeverMerges(t *testing.T) {
	x := newHarness(t)
	x.move("a", 1, 0)
	x.flag("a")
	x.flag("a")
	x.move("a", 1, 0)
	assert.Equal(t, 4, x.h.UndoLen())
}

func TestPush_DifferentTargetsDoNotMerge(t *testing.T) {
	x := newHarness(t)
	x.move("a", 1, 0)
	x.move("b", 1, 0)
	assert.Equal(t, 2, x.h.UndoLen())
}

func TestSeal_ClosesWindow(t *testing.T) {
	x := newHarness(t)
	x.type_("a", "x")
	x.h.Seal()
	assert.True(t, x.h.Sealed())
	x.type_("a", "xy")
	assert.Equal(t, 2, x.h.UndoLen())
	assert.False(t, x.h.Sealed())

	x.type_("a", "xyz")
	assert.Equal(t, 2, x.h.UndoLen())
}

func TestWithMergeWindow_Override(t *testing.T) {
	x := newHarness(t, WithMergeWindow(command.KindMove, 0))
	x.move("a", 1, 0)
	x.move("a", 1, 0)
	assert.Equal(t, 2, x.h.UndoLen())
	assert.Zero(t, x.h.Window(command.KindMove))
}

func TestPush_EvictsOldest(t *testing.T) {
	x := newHarness(t)
	require.Equal(t, 100, x.h.Limit())

	for i := 0; i < 105; i++ {
		x.flag("a")
		assert.LessOrEqual(t, x.h.UndoLen(), 100)
	}
	assert.Equal(t, 100, x.h.UndoLen())

	evicted := 0
	for _, e := range x.log {
		if e.Type == EventEvict {
			evicted++
		}
	}
	assert.Equal(t, 5, evicted)

	// 100 undos leave the flag where the 5th toggle put it: on
	for x.h.CanUndo() {
		require.NoError(t, x.h.Undo())
	}
	on, _ := x.s.Flagged("a")
	assert.True(t, on)
}

func TestPush_LimitOneKeepsMergeTarget(t *testing.T) {
	x := newHarness(t, WithLimit(1))
	x.flag("b")
	x.move("a", 1, 0)
	x.move("a", 1, 0)
	require.Equal(t, 1, x.h.UndoLen())

	top, ok := x.h.Top()
	require.True(t, ok)
	assert.Equal(t, command.KindMove, top.Kind)
	assert.Equal(t, scene.Point{}, top.Before.(command.Placement).Position)
}

func TestPush_ClearsRedo(t *testing.T) {
	x := newHarness(t)
	x.flag("a")
	x.clock.Advance(time.Minute)
	x.move("a", 1, 1)
	require.NoError(t, x.h.Undo())
	require.True(t, x.h.CanRedo())

	x.flag("b")
	assert.False(t, x.h.CanRedo())
	assert.NoError(t, x.h.Redo())
	assert.Equal(t, 2, x.h.UndoLen())
}

func TestRedo_BypassesMerge(t *testing.T) {
	x := newHarness(t)
	x.move("a", 5, 0)
	x.clock.Advance(4 * time.Second)
	x.move("a", 5, 0)
	require.NoError(t, x.h.Undo())
	require.NoError(t, x.h.Redo())
	assert.Equal(t, 2, x.h.UndoLen())
	assert.Equal(t, scene.Point{X: 10}, x.pos("a"))

	// a fresh move right after redo opens a new entry
	x.move("a", 5, 0)
	assert.Equal(t, 3, x.h.UndoLen())
}

func TestUndo_DropsInvalidTarget(t *testing.T) {
	x := newHarness(t)
	x.move("a", 1, 0)
	x.clock.Advance(time.Minute)
	x.move("b", 2, 0)
	x.clock.Advance(time.Minute)
	x.flag("a")

	// b vanishes behind the stack's back
	require.NoError(t, x.s.RemoveNode("b"))

	require.NoError(t, x.h.Undo()) // flag
	require.NoError(t, x.h.Undo()) // move b: dropped
	assert.Equal(t, 1, x.h.UndoLen())
	assert.Equal(t, 1, x.h.RedoLen())

	last := x.log[len(x.log)-1]
	assert.Equal(t, EventDrop, last.Type)
	assert.ErrorIs(t, last.Err, command.ErrInvalidTarget)

	require.NoError(t, x.h.Undo()) // move a
	assert.Equal(t, scene.Point{}, x.pos("a"))
	require.NoError(t, x.h.Redo())
	assert.Equal(t, scene.Point{X: 1}, x.pos("a"))
}

func TestUndo_KeepsEntryOnOtherErrors(t *testing.T) {
	x := newHarness(t)
	require.NoError(t, x.s.InsertGroup(scene.Group{ID: "g"}))
	bind := command.NewGroupBind("a", command.Unbound, command.Membership{GroupID: "g", Index: 0}, x.clock.Now())
	require.NoError(t, x.h.Execute(bind))

	require.NoError(t, x.s.SetLocked("g", true))
	err := x.h.Undo()
	assert.ErrorIs(t, err, command.ErrLocked)
	assert.Equal(t, 1, x.h.UndoLen())
}

func TestPush_IgnoredDuringReplay(t *testing.T) {
	x := newHarness(t)
	x.flag("a")

	// what a transition would see if it tried to record from inside Undo
	x.h.replaying = true
	assert.False(t, x.h.Push(command.NewToggleFlag("b", false, x.clock.Now())))
	assert.NoError(t, x.h.Execute(command.NewToggleFlag("b", false, x.clock.Now())))
	assert.NoError(t, x.h.Undo())
	x.h.replaying = false

	assert.Equal(t, 1, x.h.UndoLen())
	on, _ := x.s.Flagged("b")
	assert.False(t, on)
}

func TestExecute_ApplyFailureRecordsNothing(t *testing.T) {
	x := newHarness(t)
	err := x.h.Execute(command.NewToggleFlag("ghost", false, x.clock.Now()))
	assert.ErrorIs(t, err, command.ErrInvalidTarget)
	assert.False(t, x.h.CanUndo())
}

func TestSnapshotRestore(t *testing.T) {
	x := newHarness(t)
	x.flag("a")
	x.clock.Advance(time.Minute)
	x.move("a", 3, 4)
	x.clock.Advance(time.Minute)
	x.flag("b")
	require.NoError(t, x.h.Undo())

	snap := x.h.Snapshot()
	require.Len(t, snap.Undo, 2)
	require.Len(t, snap.Redo, 1)

	// the snapshot does not follow later pushes
	x.flag("b")
	assert.Len(t, snap.Undo, 2)
	assert.Len(t, snap.Redo, 1)

	other := New(x.s)
	other.Restore(snap, true)
	assert.Equal(t, 2, other.UndoLen())
	assert.Equal(t, 1, other.RedoLen())
	assert.True(t, other.Sealed())
}

func TestRestore_TrimsToLimit(t *testing.T) {
	x := newHarness(t)
	var snap Snapshot
	for i := 0; i < 5; i++ {
		snap.Undo = append(snap.Undo, command.NewToggleFlag("a", i%2 == 1, x.clock.Now()))
	}
	h := New(x.s, WithLimit(3))
	h.Restore(snap, false)
	assert.Equal(t, 3, h.UndoLen())

	bottom := h.Snapshot().Undo[0]
	assert.Equal(t, snap.Undo[2], bottom)
}

func TestClear(t *testing.T) {
	x := newHarness(t)
	x.flag("a")
	x.flag("a")
	require.NoError(t, x.h.Undo())
	x.h.Clear()
	assert.False(t, x.h.CanUndo())
	assert.False(t, x.h.CanRedo())
}

func TestObserver_SeesSettledDepths(t *testing.T) {
	x := newHarness(t, WithLimit(2))
	x.flag("a")
	x.flag("a")
	require.NoError(t, x.h.Undo())
	x.log = nil

	x.flag("b")
	x.flag("b")

	assert.Equal(t, []EventType{EventPush, EventClear, EventPush, EventEvict}, x.types())
	for _, e := range x.log {
		assert.LessOrEqual(t, e.UndoLen, 2, "event %s", e.Type)
		assert.Zero(t, e.RedoLen, "event %s", e.Type)
	}
}
