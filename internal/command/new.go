package command

import (
	"time"

	"github.com/roach88/trellis/internal/scene"
)

// stamp normalizes a timestamp so that it survives a JSON round trip
// unchanged.
func stamp(at time.Time) time.Time {
	return at.UTC().Round(0)
}

func key(kind Kind, target string, extra ...string) string {
	k := string(kind) + ":" + target
	for _, e := range extra {
		k += ":" + e
	}
	return k
}

func newCommand(kind Kind, target string, before, after State, at time.Time, extra ...string) Command {
	return Command{
		Kind:     kind,
		Target:   target,
		Before:   before,
		After:    after,
		At:       stamp(at),
		MergeKey: key(kind, target, extra...),
	}
}

// NewMove records a node, waypoint or group moving from one placement to
// another.
func NewMove(target string, from, to Placement, at time.Time) Command {
	return newCommand(KindMove, target, from, to, at)
}

// NewEditText records a text field changing. Edits of different fields on
// the same target never merge.
func NewEditText(ref scene.TextRef, from, to scene.TextState, at time.Time) Command {
	return newCommand(KindEditText, ref.Target,
		Text{Field: ref.Field, TextState: from},
		Text{Field: ref.Field, TextState: to},
		at, ref.Field)
}

func NewCreateNode(rec NodeRecord, at time.Time) Command {
	return newCommand(KindCreateNode, rec.Node.ID, Absent{}, rec, at)
}

func NewDeleteNode(rec NodeRecord, at time.Time) Command {
	return newCommand(KindDeleteNode, rec.Node.ID, rec, Absent{}, at)
}

func NewToggleFlag(target string, from bool, at time.Time) Command {
	return newCommand(KindToggleFlag, target, Switch{On: from}, Switch{On: !from}, at)
}

func NewToggleLock(target string, from bool, at time.Time) Command {
	return newCommand(KindToggleLock, target, Switch{On: from}, Switch{On: !from}, at)
}

// NewGroupBind records a node joining a group, possibly leaving another.
func NewGroupBind(nodeID string, from, to Membership, at time.Time) Command {
	return newCommand(KindGroupBind, nodeID, from, to, at)
}

func NewGroupUnbind(nodeID string, from Membership, at time.Time) Command {
	return newCommand(KindGroupUnbind, nodeID, from, Unbound, at)
}

// NewTagAssign records a tag being added (present) or removed. tag must
// already be normalized.
func NewTagAssign(nodeID, tag string, present bool, at time.Time) Command {
	return newCommand(KindTagAssign, nodeID,
		TagState{Tag: tag, Present: !present},
		TagState{Tag: tag, Present: present},
		at, tag)
}

func NewEdgeCreate(rec EdgeRecord, at time.Time) Command {
	return newCommand(KindEdgeCreate, rec.Edge.ID, Absent{}, rec, at)
}

func NewEdgeDelete(rec EdgeRecord, at time.Time) Command {
	return newCommand(KindEdgeDelete, rec.Edge.ID, rec, Absent{}, at)
}

func NewWaypointInsert(rec WaypointRecord, at time.Time) Command {
	return newCommand(KindWaypointInsert, rec.Waypoint.ID, Absent{}, rec, at)
}

func NewWaypointDelete(rec WaypointRecord, at time.Time) Command {
	return newCommand(KindWaypointDelete, rec.Waypoint.ID, rec, Absent{}, at)
}

func NewGroupCreate(rec GroupRecord, at time.Time) Command {
	return newCommand(KindGroupCreate, rec.Group.ID, Absent{}, rec, at)
}

func NewGroupDelete(rec GroupRecord, at time.Time) Command {
	return newCommand(KindGroupDelete, rec.Group.ID, rec, Absent{}, at)
}

func NewGroupResize(groupID string, from, to Bounds, at time.Time) Command {
	return newCommand(KindGroupResize, groupID, from, to, at)
}

func NewSnippetAdd(rec SnippetRecord, at time.Time) Command {
	return newCommand(KindSnippetAdd, rec.Snippet.ID, Absent{}, rec, at)
}

func NewSnippetRemove(rec SnippetRecord, at time.Time) Command {
	return newCommand(KindSnippetRemove, rec.Snippet.ID, rec, Absent{}, at)
}

// NewSnippetMove records a snippet moving from one index of its node's list
// to another.
func NewSnippetMove(snippetID string, from, to int, at time.Time) Command {
	return newCommand(KindSnippetMove, snippetID, Slot{Index: from}, Slot{Index: to}, at)
}

// NewNodeMetadataEdit records one metadata field of a node changing. Edits
// of different fields never merge.
func NewNodeMetadataEdit(nodeID, field, from, to string, at time.Time) Command {
	return newCommand(KindNodeMetadata, nodeID,
		MetadataValue{Field: field, Value: from},
		MetadataValue{Field: field, Value: to},
		at, field)
}

func NewTodoAdd(rec TodoRecord, at time.Time) Command {
	return newCommand(KindTodoAdd, rec.Todo.ID, Absent{}, rec, at)
}

func NewTodoRemove(rec TodoRecord, at time.Time) Command {
	return newCommand(KindTodoRemove, rec.Todo.ID, rec, Absent{}, at)
}

func NewTodoEdit(todoID, from, to string, at time.Time) Command {
	return newCommand(KindTodoEdit, todoID, Label{Value: from}, Label{Value: to}, at)
}

func NewTodoToggle(todoID string, from bool, at time.Time) Command {
	return newCommand(KindTodoToggle, todoID, Switch{On: from}, Switch{On: !from}, at)
}

func NewTodoMove(todoID string, from, to int, at time.Time) Command {
	return newCommand(KindTodoMove, todoID, Slot{Index: from}, Slot{Index: to}, at)
}

// NewTagAdd records a tag joining the catalogue. The name must already be
// normalized.
func NewTagAdd(rec CatalogTag, at time.Time) Command {
	return newCommand(KindTagAdd, rec.Name, Absent{}, rec, at)
}

func NewTagRemove(rec CatalogTag, at time.Time) Command {
	return newCommand(KindTagRemove, rec.Name, rec, Absent{}, at)
}

// NewTagRename records a catalogue tag being renamed. Target is the old
// name.
func NewTagRename(from, to string, at time.Time) Command {
	return newCommand(KindTagRename, from, Label{Value: from}, Label{Value: to}, at)
}

func NewTagMove(name string, from, to int, at time.Time) Command {
	return newCommand(KindTagMove, name, Slot{Index: from}, Slot{Index: to}, at)
}

// NewBatch groups steps into a single undo step. Steps are applied in order
// and reverted in reverse order.
func NewBatch(at time.Time, steps ...Command) Command {
	return Command{
		Kind:  KindBatch,
		At:    stamp(at),
		Steps: steps,
	}
}
