package scene

import (
	"slices"
	"unicode/utf8"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) (dx, dy float64) {
	return p.X - q.X, p.Y - q.Y
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"w" validate:"gte=0"`
	H float64 `json:"h" validate:"gte=0"`
}

// TextState is the content of an editable text field together with its
// caret and selection anchor. Cursor and Anchor count runes; Anchor equals
// Cursor when nothing is selected.
type TextState struct {
	Value  string `json:"value"`
	Cursor int    `json:"cursor" validate:"gte=0"`
	Anchor int    `json:"anchor" validate:"gte=0"`
}

// Clamp limits Cursor and Anchor to the bounds of Value.
func (t TextState) Clamp() TextState {
	n := utf8.RuneCountInString(t.Value)
	t.Cursor = min(max(t.Cursor, 0), n)
	t.Anchor = min(max(t.Anchor, 0), n)
	return t
}

// Replace swaps the content while keeping the caret and selection where
// they were, clamped to the new length.
func (t TextState) Replace(value string) TextState {
	t.Value = value
	return t.Clamp()
}

// NodeKind distinguishes the two node flavours of a research canvas.
type NodeKind string

const (
	KindPipelineModule NodeKind = "pipeline_module"
	KindReferencePaper NodeKind = "reference_paper"
)

// Snippet is a text or image excerpt attached to a node.
type Snippet struct {
	ID          string `json:"id" validate:"required"`
	Type        string `json:"type" validate:"oneof=text image"`
	Content     string `json:"content"`
	SourceLabel string `json:"source_label,omitempty"`
}

// Metadata is the descriptive data of a node. Papers fill Year and
// Conference, modules ModuleName.
type Metadata struct {
	Year       string `json:"year,omitempty"`
	Conference string `json:"conference,omitempty"`
	ModuleName string `json:"module_name,omitempty"`
}

// Node is a canvas node. GroupID mirrors the owning Group's Members list.
type Node struct {
	ID       string    `json:"id" validate:"required"`
	Kind     NodeKind  `json:"kind" validate:"oneof=pipeline_module reference_paper"`
	Position Point     `json:"position"`
	Title    TextState `json:"title"`
	Metadata Metadata  `json:"metadata,omitzero"`
	Tags     []string  `json:"tags,omitempty" validate:"dive,required"`
	Snippets []Snippet `json:"snippets,omitempty" validate:"dive"`
	Flagged  bool      `json:"flagged,omitempty"`
	Locked   bool      `json:"locked,omitempty"`
	GroupID  string    `json:"group_id,omitempty"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Tags = slices.Clone(n.Tags)
	n.Snippets = slices.Clone(n.Snippets)
	return n
}

// Edge is a directed connection between two nodes, bent through an ordered
// list of waypoints.
type Edge struct {
	ID        string   `json:"id" validate:"required"`
	SourceID  string   `json:"source_id" validate:"required"`
	TargetID  string   `json:"target_id" validate:"required,nefield=SourceID"`
	Waypoints []string `json:"waypoints,omitempty"`
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	e.Waypoints = slices.Clone(e.Waypoints)
	return e
}

// Waypoint is a bend point owned by an edge.
type Waypoint struct {
	ID       string `json:"id" validate:"required"`
	EdgeID   string `json:"edge_id" validate:"required"`
	Position Point  `json:"position"`
	Locked   bool   `json:"locked,omitempty"`
}

// Group is a rectangular container. Members order is part of its state.
type Group struct {
	ID       string    `json:"id" validate:"required"`
	Name     TextState `json:"name"`
	Position Point     `json:"position"`
	Size     Size      `json:"size"`
	Locked   bool      `json:"locked,omitempty"`
	Members  []string  `json:"members,omitempty"`
}

// Clone returns a deep copy of g.
func (g Group) Clone() Group {
	g.Members = slices.Clone(g.Members)
	return g
}

// Todo is one item of the project checklist.
type Todo struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

// compact turns an empty slice into nil so that removing the last element
// leaves a value equal to one that never had any.
func compact[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// insertAt inserts v at index i, clamping i to the valid range.
func insertAt[T any](s []T, i int, v T) []T {
	i = min(max(i, 0), len(s))
	return slices.Insert(s, i, v)
}

// moveTo moves the element at from so that it ends up at index to
// (clamped).
func moveTo[T any](s []T, from, to int) []T {
	v := s[from]
	s = slices.Delete(s, from, from+1)
	return insertAt(s, to, v)
}

// removeValue deletes the first occurrence of v and reports its index, or -1.
func removeValue[T comparable](s []T, v T) ([]T, int) {
	i := slices.Index(s, v)
	if i < 0 {
		return s, -1
	}
	return compact(slices.Delete(s, i, i+1)), i
}
