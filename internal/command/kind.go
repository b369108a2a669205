package command

// Kind discriminates Command variants.
type Kind string

const (
	KindMove           Kind = "move"
	KindCreateNode     Kind = "create_node"
	KindDeleteNode     Kind = "delete_node"
	KindEditText       Kind = "edit_text"
	KindToggleFlag     Kind = "toggle_flag"
	KindToggleLock     Kind = "toggle_lock"
	KindGroupBind      Kind = "group_bind"
	KindGroupUnbind    Kind = "group_unbind"
	KindTagAssign      Kind = "tag_assign"
	KindEdgeCreate     Kind = "edge_create"
	KindEdgeDelete     Kind = "edge_delete"
	KindWaypointInsert Kind = "waypoint_insert"
	KindWaypointDelete Kind = "waypoint_delete"
	KindGroupCreate    Kind = "group_create"
	KindGroupDelete    Kind = "group_delete"
	KindGroupResize    Kind = "group_resize"
	KindSnippetAdd     Kind = "snippet_add"
	KindSnippetRemove  Kind = "snippet_remove"
	KindSnippetMove    Kind = "snippet_move"
	KindNodeMetadata   Kind = "node_metadata_edit"

	// Project checklist.
	KindTodoAdd    Kind = "todo_add"
	KindTodoRemove Kind = "todo_remove"
	KindTodoEdit   Kind = "todo_edit"
	KindTodoToggle Kind = "todo_toggle"
	KindTodoMove   Kind = "todo_move"

	// Project tag catalogue. Target is the tag name.
	KindTagAdd    Kind = "tag_add"
	KindTagRemove Kind = "tag_remove"
	KindTagRename Kind = "tag_rename"
	KindTagMove   Kind = "tag_move"

	// KindBatch groups several commands into one undo step. It has no
	// dispatch entry of its own; Apply and Revert walk its Steps.
	KindBatch Kind = "batch"
)

// Kinds lists every kind with a dispatch entry, in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindMove,
		KindCreateNode,
		KindDeleteNode,
		KindEditText,
		KindToggleFlag,
		KindToggleLock,
		KindGroupBind,
		KindGroupUnbind,
		KindTagAssign,
		KindEdgeCreate,
		KindEdgeDelete,
		KindWaypointInsert,
		KindWaypointDelete,
		KindGroupCreate,
		KindGroupDelete,
		KindGroupResize,
		KindSnippetAdd,
		KindSnippetRemove,
		KindSnippetMove,
		KindNodeMetadata,
		KindTodoAdd,
		KindTodoRemove,
		KindTodoEdit,
		KindTodoToggle,
		KindTodoMove,
		KindTagAdd,
		KindTagRemove,
		KindTagRename,
		KindTagMove,
	}
}

// Known reports whether k can be applied.
func (k Kind) Known() bool {
	if k == KindBatch {
		return true
	}
	_, ok := table[k]
	return ok
}
