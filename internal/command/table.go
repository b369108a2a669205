package command

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/trellis/internal/scene"
)

// transition moves target from one state to the other. Apply passes
// (Before, After) and Revert passes (After, Before), so every transition
// handles both directions.
type transition func(s *scene.Scene, kind Kind, target string, from, to State) error

type handler struct {
	transition transition
	decode     func(json.RawMessage) (State, error)
	window     time.Duration
}

// table is the single dispatch point for every kind. Adding a kind means
// adding an entry here; the exhaustiveness test fails otherwise.
var table = map[Kind]handler{
	KindMove:           {transition: movePlacement, decode: decodeAs[Placement], window: DefaultMergeWindow},
	KindCreateNode:     {transition: nodePresence, decode: decodeOrAbsent[NodeRecord]},
	KindDeleteNode:     {transition: nodePresence, decode: decodeOrAbsent[NodeRecord]},
	KindEditText:       {transition: setText, decode: decodeAs[Text], window: DefaultMergeWindow},
	KindToggleFlag:     {transition: setFlag, decode: decodeAs[Switch]},
	KindToggleLock:     {transition: setLock, decode: decodeAs[Switch]},
	KindGroupBind:      {transition: setMembership, decode: decodeAs[Membership]},
	KindGroupUnbind:    {transition: setMembership, decode: decodeAs[Membership]},
	KindTagAssign:      {transition: setTag, decode: decodeAs[TagState]},
	KindEdgeCreate:     {transition: edgePresence, decode: decodeOrAbsent[EdgeRecord]},
	KindEdgeDelete:     {transition: edgePresence, decode: decodeOrAbsent[EdgeRecord]},
	KindWaypointInsert: {transition: waypointPresence, decode: decodeOrAbsent[WaypointRecord]},
	KindWaypointDelete: {transition: waypointPresence, decode: decodeOrAbsent[WaypointRecord]},
	KindGroupCreate:    {transition: groupPresence, decode: decodeOrAbsent[GroupRecord]},
	KindGroupDelete:    {transition: groupPresence, decode: decodeOrAbsent[GroupRecord]},
	KindGroupResize:    {transition: setBounds, decode: decodeAs[Bounds]},
	KindSnippetAdd:     {transition: snippetPresence, decode: decodeOrAbsent[SnippetRecord]},
	KindSnippetRemove:  {transition: snippetPresence, decode: decodeOrAbsent[SnippetRecord]},
	KindSnippetMove:    {transition: moveSnippet, decode: decodeAs[Slot]},
	KindNodeMetadata:   {transition: setMetadata, decode: decodeAs[MetadataValue]},
	KindTodoAdd:        {transition: todoPresence, decode: decodeOrAbsent[TodoRecord]},
	KindTodoRemove:     {transition: todoPresence, decode: decodeOrAbsent[TodoRecord]},
	KindTodoEdit:       {transition: setTodoText, decode: decodeAs[Label]},
	KindTodoToggle:     {transition: setTodoDone, decode: decodeAs[Switch]},
	KindTodoMove:       {transition: moveTodo, decode: decodeAs[Slot]},
	KindTagAdd:         {transition: catalogPresence, decode: decodeOrAbsent[CatalogTag]},
	KindTagRemove:      {transition: catalogPresence, decode: decodeOrAbsent[CatalogTag]},
	KindTagRename:      {transition: renameCatalogTag, decode: decodeAs[Label]},
	KindTagMove:        {transition: moveCatalogTag, decode: decodeAs[Slot]},
}

func movePlacement(s *scene.Scene, kind Kind, target string, _, to State) error {
	p, ok := to.(Placement)
	if !ok {
		return badState(kind, to)
	}
	if _, ok := s.Position(target); !ok {
		return missing(kind, target)
	}
	if err := s.SetPosition(target, p.Position); err != nil {
		return invalid(err)
	}
	// Members that are gone were removed by a later command; they come back
	// at their own positions when that command is undone.
	for id, pos := range p.Members {
		if _, ok := s.Position(id); ok {
			_ = s.SetPosition(id, pos)
		}
	}
	return nil
}

func setText(s *scene.Scene, kind Kind, target string, _, to State) error {
	t, ok := to.(Text)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetText(scene.TextRef{Target: target, Field: t.Field}, t.TextState))
}

func setFlag(s *scene.Scene, kind Kind, target string, _, to State) error {
	sw, ok := to.(Switch)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetFlagged(target, sw.On))
}

func setLock(s *scene.Scene, kind Kind, target string, _, to State) error {
	sw, ok := to.(Switch)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetLocked(target, sw.On))
}

func setTag(s *scene.Scene, kind Kind, target string, _, to State) error {
	t, ok := to.(TagState)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetTag(target, t.Tag, t.Present))
}

func setBounds(s *scene.Scene, kind Kind, target string, _, to State) error {
	b, ok := to.(Bounds)
	if !ok {
		return badState(kind, to)
	}
	if _, ok := s.Group(target); !ok {
		return missing(kind, target)
	}
	if err := s.SetPosition(target, b.Position); err != nil {
		return invalid(err)
	}
	return invalid(s.SetSize(target, b.Size))
}

// setMembership changes which group a node belongs to. Leaving or joining a
// locked group is refused.
func setMembership(s *scene.Scene, kind Kind, target string, _, to State) error {
	m, ok := to.(Membership)
	if !ok {
		return badState(kind, to)
	}
	if _, ok := s.Node(target); !ok {
		return missing(kind, target)
	}
	current, _ := s.Membership(target)
	if current == m.GroupID {
		return nil
	}
	if m.GroupID != "" {
		g, ok := s.Group(m.GroupID)
		if !ok {
			return missing(kind, m.GroupID)
		}
		if g.Locked {
			return fmt.Errorf("%s %s: group %s: %w", kind, target, m.GroupID, ErrLocked)
		}
	}
	if s.GroupLocked(target) {
		return fmt.Errorf("%s %s: group %s: %w", kind, target, current, ErrLocked)
	}
	if err := s.Unbind(target); err != nil {
		return invalid(err)
	}
	if m.GroupID == "" {
		return nil
	}
	return invalid(s.Bind(target, m.GroupID, m.Index))
}

func nodePresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case NodeRecord:
		return restoreNode(s, kind, st)
	case Absent:
		if _, ok := from.(NodeRecord); !ok {
			return badState(kind, from)
		}
		return removeNode(s, kind, target)
	default:
		return badState(kind, to)
	}
}

func restoreNode(s *scene.Scene, kind Kind, rec NodeRecord) error {
	if s.Has(rec.Node.ID) {
		return nil
	}
	// Check everything first so a failed restore leaves nothing behind.
	if gid := rec.Membership.GroupID; gid != "" {
		if _, ok := s.Group(gid); !ok {
			return missing(kind, gid)
		}
	}
	for _, e := range rec.Edges {
		if s.Has(e.ID) {
			return fmt.Errorf("%s %s: edge %s: %w", kind, rec.Node.ID, e.ID, scene.ErrDuplicate)
		}
		for _, end := range []string{e.SourceID, e.TargetID} {
			if end != rec.Node.ID && !s.Has(end) {
				return missing(kind, end)
			}
		}
	}
	for _, w := range rec.Waypoints {
		if s.Has(w.ID) {
			return fmt.Errorf("%s %s: waypoint %s: %w", kind, rec.Node.ID, w.ID, scene.ErrDuplicate)
		}
	}
	if err := s.InsertNode(rec.Node); err != nil {
		return invalid(err)
	}
	if gid := rec.Membership.GroupID; gid != "" {
		if err := s.Bind(rec.Node.ID, gid, rec.Membership.Index); err != nil {
			return invalid(err)
		}
	}
	for _, e := range rec.Edges {
		if err := restoreEdge(s, kind, EdgeRecord{Edge: e, Waypoints: waypointsOf(e, rec.Waypoints)}); err != nil {
			return err
		}
	}
	return nil
}

// removeNode detaches a node from its group, drops its incident edges and
// then the node itself.
func removeNode(s *scene.Scene, kind Kind, id string) error {
	if _, ok := s.Node(id); !ok {
		return nil
	}
	if s.GroupLocked(id) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrLocked)
	}
	if err := s.Unbind(id); err != nil {
		return invalid(err)
	}
	for _, e := range s.IncidentEdges(id) {
		if err := removeEdge(s, e.ID); err != nil {
			return err
		}
	}
	return invalid(s.RemoveNode(id))
}

func edgePresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case EdgeRecord:
		if s.Has(st.Edge.ID) {
			return nil
		}
		for _, end := range []string{st.Edge.SourceID, st.Edge.TargetID} {
			if _, ok := s.Node(end); !ok {
				return missing(kind, end)
			}
		}
		return restoreEdge(s, kind, st)
	case Absent:
		if _, ok := from.(EdgeRecord); !ok {
			return badState(kind, from)
		}
		return removeEdge(s, target)
	default:
		return badState(kind, to)
	}
}

func restoreEdge(s *scene.Scene, kind Kind, rec EdgeRecord) error {
	if err := s.InsertEdge(rec.Edge); err != nil {
		return invalid(err)
	}
	for i, w := range rec.Waypoints {
		if err := s.InsertWaypoint(w, i); err != nil {
			return fmt.Errorf("%s: %w", kind, invalid(err))
		}
	}
	return nil
}

func removeEdge(s *scene.Scene, id string) error {
	e, ok := s.Edge(id)
	if !ok {
		return nil
	}
	for _, wid := range e.Waypoints {
		if _, err := s.RemoveWaypoint(wid); err != nil {
			return invalid(err)
		}
	}
	return invalid(s.RemoveEdge(id))
}

// waypointsOf returns the waypoints of e from pool, in e's bend order.
func waypointsOf(e scene.Edge, pool []scene.Waypoint) []scene.Waypoint {
	var out []scene.Waypoint
	for _, wid := range e.Waypoints {
		for _, w := range pool {
			if w.ID == wid {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func waypointPresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case WaypointRecord:
		if s.Has(st.Waypoint.ID) {
			return nil
		}
		if _, ok := s.Edge(st.Waypoint.EdgeID); !ok {
			return missing(kind, st.Waypoint.EdgeID)
		}
		return invalid(s.InsertWaypoint(st.Waypoint, st.Index))
	case Absent:
		if _, ok := from.(WaypointRecord); !ok {
			return badState(kind, from)
		}
		if _, ok := s.Waypoint(target); !ok {
			return nil
		}
		_, err := s.RemoveWaypoint(target)
		return invalid(err)
	default:
		return badState(kind, to)
	}
}

func groupPresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case GroupRecord:
		return restoreGroup(s, kind, st.Group)
	case Absent:
		if _, ok := from.(GroupRecord); !ok {
			return badState(kind, from)
		}
		return removeGroup(s, kind, target)
	default:
		return badState(kind, to)
	}
}

func restoreGroup(s *scene.Scene, kind Kind, g scene.Group) error {
	if s.Has(g.ID) {
		return nil
	}
	for _, id := range g.Members {
		n, ok := s.Node(id)
		if !ok {
			return missing(kind, id)
		}
		if n.GroupID != "" {
			return fmt.Errorf("%s %s: member %s in %s: %w", kind, g.ID, id, n.GroupID, scene.ErrAttached)
		}
	}
	if err := s.InsertGroup(g); err != nil {
		return invalid(err)
	}
	for i, id := range g.Members {
		if err := s.Bind(id, g.ID, i); err != nil {
			return invalid(err)
		}
	}
	return nil
}

func removeGroup(s *scene.Scene, kind Kind, id string) error {
	g, ok := s.Group(id)
	if !ok {
		return nil
	}
	if g.Locked {
		return fmt.Errorf("%s %s: %w", kind, id, ErrLocked)
	}
	for _, m := range g.Members {
		if err := s.Unbind(m); err != nil {
			return invalid(err)
		}
	}
	return invalid(s.RemoveGroup(id))
}

func snippetPresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case SnippetRecord:
		if s.Has(st.Snippet.ID) {
			return nil
		}
		if _, ok := s.Node(st.NodeID); !ok {
			return missing(kind, st.NodeID)
		}
		return invalid(s.InsertSnippet(st.NodeID, st.Index, st.Snippet))
	case Absent:
		if _, ok := from.(SnippetRecord); !ok {
			return badState(kind, from)
		}
		if _, _, _, ok := s.Snippet(target); !ok {
			return nil
		}
		return invalid(s.RemoveSnippet(target))
	default:
		return badState(kind, to)
	}
}
