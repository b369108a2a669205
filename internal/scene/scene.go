package scene

import (
	"fmt"
	"slices"
	"sort"
)

// ProjectTarget is the target ID for project-level fields such as the
// description.
const ProjectTarget = "project"

// Text fields addressable through TextRef.
const (
	FieldTitle       = "title"        // Node
	FieldName        = "name"         // Group
	FieldDescription = "description"  // ProjectTarget
	FieldContent     = "content"      // Snippet
	FieldSourceLabel = "source_label" // Snippet
)

// Node metadata fields addressable through SetMetadata.
const (
	MetaYear       = "year"
	MetaConference = "conference"
	MetaModuleName = "module_name"
)

// TextRef addresses one editable text field.
type TextRef struct {
	Target string `json:"target"`
	Field  string `json:"field"`
}

func (r TextRef) String() string {
	return r.Target + "/" + r.Field
}

// Scene is the in-memory canvas of one project.
type Scene struct {
	description TextState
	nodes       map[string]*Node
	edges       map[string]*Edge
	waypoints   map[string]*Waypoint
	groups      map[string]*Group

	// project checklist and tag catalogue, both in display order
	todos []Todo
	tags  []string

	// snippet ID -> owning node ID
	snippets map[string]string

	// every ID ever held in this session; IDs are never handed out twice.
	seen map[string]struct{}

	// caret positions of snippet text fields
	carets map[TextRef]caret
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		waypoints: make(map[string]*Waypoint),
		groups:    make(map[string]*Group),
		snippets:  make(map[string]string),
		seen:      map[string]struct{}{ProjectTarget: {}},
		carets:    make(map[TextRef]caret),
	}
}

// Has reports whether any entity (node, edge, waypoint, group, snippet or
// todo) with the given ID is present.
func (s *Scene) Has(id string) bool {
	if id == ProjectTarget {
		return true
	}
	if _, ok := s.nodes[id]; ok {
		return true
	}
	if _, ok := s.edges[id]; ok {
		return true
	}
	if _, ok := s.waypoints[id]; ok {
		return true
	}
	if _, ok := s.groups[id]; ok {
		return true
	}
	if _, ok := s.snippets[id]; ok {
		return true
	}
	return s.todoIndex(id) >= 0
}

// Seen reports whether id has been used by any entity during this session,
// including entities that have since been removed.
func (s *Scene) Seen(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *Scene) claim(id string) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", ErrNotFound)
	}
	if s.Has(id) {
		return fmt.Errorf("%s: %w", id, ErrDuplicate)
	}
	s.seen[id] = struct{}{}
	return nil
}

// Node returns a copy of the node with the given ID.
func (s *Scene) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Edge returns a copy of the edge with the given ID.
func (s *Scene) Edge(id string) (Edge, bool) {
	e, ok := s.edges[id]
	if !ok {
		return Edge{}, false
	}
	return e.Clone(), true
}

// Waypoint returns a copy of the waypoint with the given ID.
func (s *Scene) Waypoint(id string) (Waypoint, bool) {
	w, ok := s.waypoints[id]
	if !ok {
		return Waypoint{}, false
	}
	return *w, true
}

// Group returns a copy of the group with the given ID.
func (s *Scene) Group(id string) (Group, bool) {
	g, ok := s.groups[id]
	if !ok {
		return Group{}, false
	}
	return g.Clone(), true
}

// Snippet returns the snippet with the given ID, its owning node and its
// index in that node's list.
func (s *Scene) Snippet(id string) (nodeID string, index int, sn Snippet, ok bool) {
	nodeID, ok = s.snippets[id]
	if !ok {
		return "", -1, Snippet{}, false
	}
	n := s.nodes[nodeID]
	for i, candidate := range n.Snippets {
		if candidate.ID == id {
			return nodeID, i, candidate, true
		}
	}
	return "", -1, Snippet{}, false
}

// Nodes returns copies of all nodes ordered by ID.
func (s *Scene) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns copies of all edges ordered by ID.
func (s *Scene) Edges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Waypoints returns copies of all waypoints ordered by ID.
func (s *Scene) Waypoints() []Waypoint {
	out := make([]Waypoint, 0, len(s.waypoints))
	for _, w := range s.waypoints {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Groups returns copies of all groups ordered by ID.
func (s *Scene) Groups() []Group {
	out := make([]Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IncidentEdges returns copies of the edges that start or end at nodeID,
// ordered by ID.
func (s *Scene) IncidentEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.SourceID == nodeID || e.TargetID == nodeID {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EdgeBetween returns the ID of an edge from source to target, if any.
func (s *Scene) EdgeBetween(source, target string) (string, bool) {
	for id, e := range s.edges {
		if e.SourceID == source && e.TargetID == target {
			return id, true
		}
	}
	return "", false
}

// InsertNode adds n to the scene. Group membership is not taken from
// n.GroupID; use Bind after inserting.
func (s *Scene) InsertNode(n Node) error {
	for _, sn := range n.Snippets {
		if s.Has(sn.ID) {
			return fmt.Errorf("insert node %s: snippet %s: %w", n.ID, sn.ID, ErrDuplicate)
		}
	}
	if err := s.claim(n.ID); err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	n = n.Clone()
	n.GroupID = ""
	s.nodes[n.ID] = &n
	for _, sn := range n.Snippets {
		s.seen[sn.ID] = struct{}{}
		s.snippets[sn.ID] = n.ID
	}
	return nil
}

// RemoveNode deletes a detached node and its snippets.
func (s *Scene) RemoveNode(id string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("remove node %s: %w", id, ErrNotFound)
	}
	if n.GroupID != "" {
		return fmt.Errorf("remove node %s: member of %s: %w", id, n.GroupID, ErrAttached)
	}
	if edges := s.IncidentEdges(id); len(edges) > 0 {
		return fmt.Errorf("remove node %s: %d incident edges: %w", id, len(edges), ErrAttached)
	}
	for _, sn := range n.Snippets {
		delete(s.snippets, sn.ID)
	}
	delete(s.nodes, id)
	return nil
}

// InsertEdge adds e between two existing nodes. e.Waypoints is ignored; use
// InsertWaypoint to restore bends.
func (s *Scene) InsertEdge(e Edge) error {
	if _, ok := s.nodes[e.SourceID]; !ok {
		return fmt.Errorf("insert edge %s: source %s: %w", e.ID, e.SourceID, ErrNotFound)
	}
	if _, ok := s.nodes[e.TargetID]; !ok {
		return fmt.Errorf("insert edge %s: target %s: %w", e.ID, e.TargetID, ErrNotFound)
	}
	if err := s.claim(e.ID); err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	e.Waypoints = nil
	s.edges[e.ID] = &e
	return nil
}

// RemoveEdge deletes an edge that has no waypoints left.
func (s *Scene) RemoveEdge(id string) error {
	e, ok := s.edges[id]
	if !ok {
		return fmt.Errorf("remove edge %s: %w", id, ErrNotFound)
	}
	if len(e.Waypoints) > 0 {
		return fmt.Errorf("remove edge %s: %d waypoints: %w", id, len(e.Waypoints), ErrAttached)
	}
	delete(s.edges, id)
	return nil
}

// InsertWaypoint adds w to its edge at the given bend index (clamped).
func (s *Scene) InsertWaypoint(w Waypoint, index int) error {
	e, ok := s.edges[w.EdgeID]
	if !ok {
		return fmt.Errorf("insert waypoint %s: edge %s: %w", w.ID, w.EdgeID, ErrNotFound)
	}
	if err := s.claim(w.ID); err != nil {
		return fmt.Errorf("insert waypoint: %w", err)
	}
	s.waypoints[w.ID] = &w
	e.Waypoints = insertAt(e.Waypoints, index, w.ID)
	return nil
}

// RemoveWaypoint deletes a waypoint and reports the bend index it occupied.
func (s *Scene) RemoveWaypoint(id string) (int, error) {
	w, ok := s.waypoints[id]
	if !ok {
		return -1, fmt.Errorf("remove waypoint %s: %w", id, ErrNotFound)
	}
	index := -1
	if e, ok := s.edges[w.EdgeID]; ok {
		e.Waypoints, index = removeValue(e.Waypoints, id)
	}
	delete(s.waypoints, id)
	return index, nil
}

// WaypointIndex reports the bend index of a waypoint on its edge.
func (s *Scene) WaypointIndex(id string) int {
	w, ok := s.waypoints[id]
	if !ok {
		return -1
	}
	e, ok := s.edges[w.EdgeID]
	if !ok {
		return -1
	}
	return slices.Index(e.Waypoints, id)
}

// InsertGroup adds an empty group. g.Members is ignored; use Bind.
func (s *Scene) InsertGroup(g Group) error {
	if err := s.claim(g.ID); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	g.Members = nil
	s.groups[g.ID] = &g
	return nil
}

// RemoveGroup deletes a group that has no members left.
func (s *Scene) RemoveGroup(id string) error {
	g, ok := s.groups[id]
	if !ok {
		return fmt.Errorf("remove group %s: %w", id, ErrNotFound)
	}
	if len(g.Members) > 0 {
		return fmt.Errorf("remove group %s: %d members: %w", id, len(g.Members), ErrAttached)
	}
	delete(s.groups, id)
	return nil
}

// Position returns the position of a node, waypoint or group.
func (s *Scene) Position(id string) (Point, bool) {
	if n, ok := s.nodes[id]; ok {
		return n.Position, true
	}
	if w, ok := s.waypoints[id]; ok {
		return w.Position, true
	}
	if g, ok := s.groups[id]; ok {
		return g.Position, true
	}
	return Point{}, false
}

// SetPosition moves a node, waypoint or group. Moving a group does not move
// its members.
func (s *Scene) SetPosition(id string, p Point) error {
	if n, ok := s.nodes[id]; ok {
		n.Position = p
		return nil
	}
	if w, ok := s.waypoints[id]; ok {
		w.Position = p
		return nil
	}
	if g, ok := s.groups[id]; ok {
		g.Position = p
		return nil
	}
	return fmt.Errorf("set position %s: %w", id, ErrNotFound)
}

// SetSize resizes a group.
func (s *Scene) SetSize(groupID string, size Size) error {
	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("set size %s: %w", groupID, ErrNotFound)
	}
	g.Size = size
	return nil
}

// Locked reports the lock flag of a node, waypoint or group.
func (s *Scene) Locked(id string) (bool, error) {
	if n, ok := s.nodes[id]; ok {
		return n.Locked, nil
	}
	if w, ok := s.waypoints[id]; ok {
		return w.Locked, nil
	}
	if g, ok := s.groups[id]; ok {
		return g.Locked, nil
	}
	return false, fmt.Errorf("locked %s: %w", id, ErrNotFound)
}

// SetLocked sets the lock flag of a node, waypoint or group.
func (s *Scene) SetLocked(id string, on bool) error {
	if n, ok := s.nodes[id]; ok {
		n.Locked = on
		return nil
	}
	if w, ok := s.waypoints[id]; ok {
		w.Locked = on
		return nil
	}
	if g, ok := s.groups[id]; ok {
		g.Locked = on
		return nil
	}
	return fmt.Errorf("set locked %s: %w", id, ErrNotFound)
}

// Flagged reports the flag of a node.
func (s *Scene) Flagged(id string) (bool, error) {
	n, ok := s.nodes[id]
	if !ok {
		return false, fmt.Errorf("flagged %s: %w", id, ErrNotFound)
	}
	return n.Flagged, nil
}

// SetFlagged sets the flag of a node.
func (s *Scene) SetFlagged(id string, on bool) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("set flagged %s: %w", id, ErrNotFound)
	}
	n.Flagged = on
	return nil
}

// GroupLocked reports whether nodeID is a member of a locked group.
func (s *Scene) GroupLocked(nodeID string) bool {
	n, ok := s.nodes[nodeID]
	if !ok || n.GroupID == "" {
		return false
	}
	g, ok := s.groups[n.GroupID]
	return ok && g.Locked
}

// Membership reports the group of a node and its index in Members. An
// unbound node returns ("", -1).
func (s *Scene) Membership(nodeID string) (groupID string, index int) {
	n, ok := s.nodes[nodeID]
	if !ok || n.GroupID == "" {
		return "", -1
	}
	g, ok := s.groups[n.GroupID]
	if !ok {
		return "", -1
	}
	return g.ID, slices.Index(g.Members, nodeID)
}

// Bind adds an unbound node to a group at the given member index (clamped).
// Binding a node to the group it already belongs to is a no-op.
func (s *Scene) Bind(nodeID, groupID string, index int) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("bind %s: %w", nodeID, ErrNotFound)
	}
	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("bind %s: group %s: %w", nodeID, groupID, ErrNotFound)
	}
	if n.GroupID == groupID {
		return nil
	}
	if n.GroupID != "" {
		return fmt.Errorf("bind %s: member of %s: %w", nodeID, n.GroupID, ErrAttached)
	}
	g.Members = insertAt(g.Members, index, nodeID)
	n.GroupID = groupID
	return nil
}

// Unbind removes a node from its group. Unbinding an unbound node is a no-op.
func (s *Scene) Unbind(nodeID string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("unbind %s: %w", nodeID, ErrNotFound)
	}
	if n.GroupID == "" {
		return nil
	}
	if g, ok := s.groups[n.GroupID]; ok {
		g.Members, _ = removeValue(g.Members, nodeID)
	}
	n.GroupID = ""
	return nil
}

// HasTag reports whether a node carries tag.
func (s *Scene) HasTag(nodeID, tag string) (bool, error) {
	n, ok := s.nodes[nodeID]
	if !ok {
		return false, fmt.Errorf("has tag %s: %w", nodeID, ErrNotFound)
	}
	return slices.Contains(n.Tags, tag), nil
}

// SetTag adds (present) or removes a tag on a node. Tags keep insertion order.
func (s *Scene) SetTag(nodeID, tag string, present bool) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("set tag %s: %w", nodeID, ErrNotFound)
	}
	has := slices.Contains(n.Tags, tag)
	switch {
	case present && !has:
		n.Tags = append(n.Tags, tag)
	case !present && has:
		n.Tags, _ = removeValue(n.Tags, tag)
	}
	return nil
}

// MoveSnippet reorders a snippet within its node so that it ends up at
// index (clamped).
func (s *Scene) MoveSnippet(id string, index int) error {
	nodeID, from, _, ok := s.Snippet(id)
	if !ok {
		return fmt.Errorf("move snippet %s: %w", id, ErrNotFound)
	}
	n := s.nodes[nodeID]
	n.Snippets = moveTo(n.Snippets, from, index)
	return nil
}

// Metadata returns one metadata field of a node.
func (s *Scene) Metadata(nodeID, field string) (string, error) {
	p, err := s.metadataField(nodeID, field)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetMetadata sets one metadata field of a node.
func (s *Scene) SetMetadata(nodeID, field, value string) error {
	p, err := s.metadataField(nodeID, field)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (s *Scene) metadataField(nodeID, field string) (*string, error) {
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("metadata %s/%s: %w", nodeID, field, ErrNotFound)
	}
	switch field {
	case MetaYear:
		return &n.Metadata.Year, nil
	case MetaConference:
		return &n.Metadata.Conference, nil
	case MetaModuleName:
		return &n.Metadata.ModuleName, nil
	}
	return nil, fmt.Errorf("metadata %s/%s: %w", nodeID, field, ErrUnknownField)
}

// InsertSnippet attaches sn to a node at index (clamped).
func (s *Scene) InsertSnippet(nodeID string, index int, sn Snippet) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("insert snippet %s: node %s: %w", sn.ID, nodeID, ErrNotFound)
	}
	if err := s.claim(sn.ID); err != nil {
		return fmt.Errorf("insert snippet: %w", err)
	}
	n.Snippets = insertAt(n.Snippets, index, sn)
	s.snippets[sn.ID] = nodeID
	return nil
}

// RemoveSnippet detaches a snippet from its node.
func (s *Scene) RemoveSnippet(id string) error {
	nodeID, index, _, ok := s.Snippet(id)
	if !ok {
		return fmt.Errorf("remove snippet %s: %w", id, ErrNotFound)
	}
	n := s.nodes[nodeID]
	n.Snippets = compact(slices.Delete(n.Snippets, index, index+1))
	delete(s.snippets, id)
	return nil
}

// Description returns the project description.
func (s *Scene) Description() TextState {
	return s.description
}
