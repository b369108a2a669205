package command

import (
	"encoding/json"

	"github.com/roach88/trellis/internal/scene"
)

// State is the minimal snapshot a command needs to reach one side of its
// transition. The set of implementations is closed.
type State interface {
	isState()
}

// Absent is the state of an entity that does not exist. It encodes as null.
type Absent struct{}

func (Absent) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Placement is where a movable entity sits. Members carries the positions
// of a group's children so a group move restores them exactly.
type Placement struct {
	Position scene.Point            `json:"position"`
	Members  map[string]scene.Point `json:"members,omitempty"`
}

// Text is the full state of one text field.
type Text struct {
	Field string `json:"field"`
	scene.TextState
}

// Switch is a boolean flag (flagged, locked).
type Switch struct {
	On bool `json:"on"`
}

// Membership is a node's group and its index among the group's members.
// An unbound node has GroupID "" and Index -1.
type Membership struct {
	GroupID string `json:"group_id,omitempty"`
	Index   int    `json:"index"`
}

// Unbound is the Membership of a node outside any group.
var Unbound = Membership{Index: -1}

// TagState records whether a node carries a tag.
type TagState struct {
	Tag     string `json:"tag"`
	Present bool   `json:"present"`
}

// NodeRecord is everything needed to bring a deleted node back: the node
// itself (position included), its incident edges with their waypoints, and
// its group membership.
type NodeRecord struct {
	Node       scene.Node       `json:"node"`
	Edges      []scene.Edge     `json:"edges,omitempty"`
	Waypoints  []scene.Waypoint `json:"waypoints,omitempty"`
	Membership Membership       `json:"membership"`
}

// EdgeRecord is an edge with its waypoints in bend order.
type EdgeRecord struct {
	Edge      scene.Edge       `json:"edge"`
	Waypoints []scene.Waypoint `json:"waypoints,omitempty"`
}

// WaypointRecord is a waypoint and its bend index on the owning edge.
type WaypointRecord struct {
	Waypoint scene.Waypoint `json:"waypoint"`
	Index    int            `json:"index"`
}

// GroupRecord is a group including its ordered members.
type GroupRecord struct {
	Group scene.Group `json:"group"`
}

// Bounds is a group's rectangle.
type Bounds struct {
	Position scene.Point `json:"position"`
	Size     scene.Size  `json:"size"`
}

// SnippetRecord is a snippet and where it sits on its node.
type SnippetRecord struct {
	NodeID  string        `json:"node_id"`
	Index   int           `json:"index"`
	Snippet scene.Snippet `json:"snippet"`
}

// Slot is a position in an ordered list: a node's snippets, the checklist
// or the tag catalogue.
type Slot struct {
	Index int `json:"index"`
}

// MetadataValue is one metadata field of a node.
type MetadataValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// TodoRecord is a todo and its place on the checklist.
type TodoRecord struct {
	Todo  scene.Todo `json:"todo"`
	Index int        `json:"index"`
}

// Label is a plain string value: a todo's text or a catalogue tag's name.
type Label struct {
	Value string `json:"value"`
}

// CatalogTag is a catalogue entry and its position.
type CatalogTag struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

func (Absent) isState()         {}
func (Placement) isState()      {}
func (Text) isState()           {}
func (Switch) isState()         {}
func (Membership) isState()     {}
func (TagState) isState()       {}
func (NodeRecord) isState()     {}
func (EdgeRecord) isState()     {}
func (WaypointRecord) isState() {}
func (GroupRecord) isState()    {}
func (Bounds) isState()         {}
func (SnippetRecord) isState()  {}
func (Slot) isState()           {}
func (MetadataValue) isState()  {}
func (TodoRecord) isState()     {}
func (Label) isState()          {}
func (CatalogTag) isState()     {}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeAs decodes a state that must be present.
func decodeAs[T State](raw json.RawMessage) (State, error) {
	var v T
	if isNull(raw) {
		return nil, ErrBadState
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeOrAbsent decodes a state that may be Absent (create/delete pairs).
func decodeOrAbsent[T State](raw json.RawMessage) (State, error) {
	if isNull(raw) {
		return Absent{}, nil
	}
	return decodeAs[T](raw)
}
