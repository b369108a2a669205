package scene

import (
	"fmt"
	"slices"
)

// DocumentVersion is the current layout of Document.
const DocumentVersion = 1

// Document is the serializable form of a Scene. Entity slices are ordered
// by ID so the same scene always produces the same document; the checklist
// and the tag catalogue keep their display order.
type Document struct {
	Version     int        `json:"version" validate:"gte=0,lte=1"`
	Description TextState  `json:"description"`
	Todos       []Todo     `json:"todos,omitempty" validate:"dive"`
	Tags        []string   `json:"global_tags,omitempty" validate:"dive,required"`
	Nodes       []Node     `json:"nodes" validate:"dive"`
	Edges       []Edge     `json:"edges" validate:"dive"`
	Waypoints   []Waypoint `json:"waypoints" validate:"dive"`
	Groups      []Group    `json:"groups" validate:"dive"`
}

// Document returns a snapshot of the scene.
func (s *Scene) Document() Document {
	return Document{
		Version:     DocumentVersion,
		Description: s.description,
		Todos:       s.Todos(),
		Tags:        s.CatalogTags(),
		Nodes:       s.Nodes(),
		Edges:       s.Edges(),
		Waypoints:   s.Waypoints(),
		Groups:      s.Groups(),
	}
}

// FromDocument builds a scene from a document, checking that every
// reference (edge endpoints, waypoint owners, group members) resolves and
// that membership is mirrored on both sides.
func FromDocument(d Document) (*Scene, error) {
	s := New()
	s.description = d.Description

	for i, t := range d.Todos {
		if err := s.InsertTodo(t, i); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	for i, tag := range d.Tags {
		if err := s.InsertCatalogTag(tag, i); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}

	for _, n := range d.Nodes {
		n.Tags = compact(n.Tags)
		n.Snippets = compact(n.Snippets)
		if err := s.InsertNode(n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	for _, g := range d.Groups {
		if err := s.InsertGroup(g); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	for _, g := range d.Groups {
		for i, member := range g.Members {
			if err := s.Bind(member, g.ID, i); err != nil {
				return nil, fmt.Errorf("%w: group %s: %v", ErrInvalidDocument, g.ID, err)
			}
		}
	}
	for _, n := range d.Nodes {
		if got := s.nodes[n.ID].GroupID; got != n.GroupID {
			return nil, fmt.Errorf("%w: node %s claims group %q, groups say %q", ErrInvalidDocument, n.ID, n.GroupID, got)
		}
	}

	waypoints := make(map[string]Waypoint, len(d.Waypoints))
	for _, w := range d.Waypoints {
		waypoints[w.ID] = w
	}
	for _, e := range d.Edges {
		if err := s.InsertEdge(e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		for i, wid := range e.Waypoints {
			w, ok := waypoints[wid]
			if !ok || w.EdgeID != e.ID {
				return nil, fmt.Errorf("%w: edge %s: waypoint %s does not belong to it", ErrInvalidDocument, e.ID, wid)
			}
			if err := s.InsertWaypoint(w, i); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
			}
			delete(waypoints, wid)
		}
	}
	if len(waypoints) > 0 {
		orphans := make([]string, 0, len(waypoints))
		for id := range waypoints {
			orphans = append(orphans, id)
		}
		slices.Sort(orphans)
		return nil, fmt.Errorf("%w: orphan waypoints %v", ErrInvalidDocument, orphans)
	}
	return s, nil
}
