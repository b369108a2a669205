package intercept

import (
	"fmt"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// CreateEdge connects source to target and returns the edge ID.
func (e *Editor) CreateEdge(source, target string) (string, error) {
	for _, id := range []string{source, target} {
		if _, ok := e.scene.Node(id); !ok {
			return "", notFound("node", id)
		}
	}
	if source == target {
		return "", fmt.Errorf("edge %s -> %s: %w", source, target, ErrSelfLoop)
	}
	if existing, ok := e.scene.EdgeBetween(source, target); ok {
		return "", fmt.Errorf("edge %s -> %s exists as %s: %w", source, target, existing, scene.ErrDuplicate)
	}
	if err := e.commit(); err != nil {
		return "", err
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	rec := command.EdgeRecord{Edge: scene.Edge{ID: id, SourceID: source, TargetID: target}}
	if err := e.record(command.NewEdgeCreate(rec, e.clock.Now())); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteEdge removes an edge and its waypoints.
func (e *Editor) DeleteEdge(id string) error {
	c, err := e.deleteEdgeCommand(id)
	if err != nil {
		return err
	}
	return e.exec(c)
}

// InsertWaypoint adds a bend to an edge at index (clamped to the current
// bends) and returns the waypoint ID.
func (e *Editor) InsertWaypoint(edgeID string, index int, p scene.Point) (string, error) {
	edge, ok := e.scene.Edge(edgeID)
	if !ok {
		return "", notFound("edge", edgeID)
	}
	if err := e.commit(); err != nil {
		return "", err
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	rec := command.WaypointRecord{
		Waypoint: scene.Waypoint{ID: id, EdgeID: edgeID, Position: p},
		Index:    min(max(index, 0), len(edge.Waypoints)),
	}
	if err := e.record(command.NewWaypointInsert(rec, e.clock.Now())); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteWaypoint removes a bend. Locked waypoints stay.
func (e *Editor) DeleteWaypoint(id string) error {
	c, err := e.deleteWaypointCommand(id)
	if err != nil {
		return err
	}
	return e.exec(c)
}
