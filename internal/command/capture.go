package command

import (
	"github.com/roach88/trellis/internal/scene"
)

// The Capture functions read the current state of an entity out of a scene
// so it can become the Before (or After) of a command.

// CapturePlacement returns where target sits. For a group the positions of
// its members are included.
func CapturePlacement(s *scene.Scene, target string) (Placement, bool) {
	pos, ok := s.Position(target)
	if !ok {
		return Placement{}, false
	}
	p := Placement{Position: pos}
	if g, ok := s.Group(target); ok && len(g.Members) > 0 {
		p.Members = make(map[string]scene.Point, len(g.Members))
		for _, id := range g.Members {
			if mp, ok := s.Position(id); ok {
				p.Members[id] = mp
			}
		}
	}
	return p, true
}

// CaptureNode returns everything needed to restore a node after deletion.
func CaptureNode(s *scene.Scene, id string) (NodeRecord, bool) {
	n, ok := s.Node(id)
	if !ok {
		return NodeRecord{}, false
	}
	rec := NodeRecord{Node: n, Membership: CaptureMembership(s, id)}
	for _, e := range s.IncidentEdges(id) {
		rec.Edges = append(rec.Edges, e)
		for _, wid := range e.Waypoints {
			if w, ok := s.Waypoint(wid); ok {
				rec.Waypoints = append(rec.Waypoints, w)
			}
		}
	}
	return rec, true
}

// CaptureMembership returns the group membership of a node.
func CaptureMembership(s *scene.Scene, nodeID string) Membership {
	gid, index := s.Membership(nodeID)
	if gid == "" {
		return Unbound
	}
	return Membership{GroupID: gid, Index: index}
}

// CaptureEdge returns an edge with its waypoints in bend order.
func CaptureEdge(s *scene.Scene, id string) (EdgeRecord, bool) {
	e, ok := s.Edge(id)
	if !ok {
		return EdgeRecord{}, false
	}
	rec := EdgeRecord{Edge: e}
	for _, wid := range e.Waypoints {
		if w, ok := s.Waypoint(wid); ok {
			rec.Waypoints = append(rec.Waypoints, w)
		}
	}
	return rec, true
}

func CaptureWaypoint(s *scene.Scene, id string) (WaypointRecord, bool) {
	w, ok := s.Waypoint(id)
	if !ok {
		return WaypointRecord{}, false
	}
	return WaypointRecord{Waypoint: w, Index: s.WaypointIndex(id)}, true
}

func CaptureGroup(s *scene.Scene, id string) (GroupRecord, bool) {
	g, ok := s.Group(id)
	if !ok {
		return GroupRecord{}, false
	}
	return GroupRecord{Group: g}, true
}

func CaptureBounds(s *scene.Scene, id string) (Bounds, bool) {
	g, ok := s.Group(id)
	if !ok {
		return Bounds{}, false
	}
	return Bounds{Position: g.Position, Size: g.Size}, true
}

func CaptureSnippet(s *scene.Scene, id string) (SnippetRecord, bool) {
	nodeID, index, sn, ok := s.Snippet(id)
	if !ok {
		return SnippetRecord{}, false
	}
	return SnippetRecord{NodeID: nodeID, Index: index, Snippet: sn}, true
}

func CaptureTodo(s *scene.Scene, id string) (TodoRecord, bool) {
	t, index, ok := s.Todo(id)
	if !ok {
		return TodoRecord{}, false
	}
	return TodoRecord{Todo: t, Index: index}, true
}

func CaptureCatalogTag(s *scene.Scene, name string) (CatalogTag, bool) {
	index := s.CatalogIndex(name)
	if index < 0 {
		return CatalogTag{}, false
	}
	return CatalogTag{Name: name, Index: index}, true
}
