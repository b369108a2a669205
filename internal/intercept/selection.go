package intercept

import (
	"errors"
	"slices"

	"github.com/roach88/trellis/internal/command"
)

// Select replaces the selection. Unknown IDs are ignored.
func (e *Editor) Select(ids ...string) {
	e.selection = e.selection[:0]
	for _, id := range ids {
		if e.scene.Has(id) && !slices.Contains(e.selection, id) {
			e.selection = append(e.selection, id)
		}
	}
}

// Selection returns the selected IDs in selection order.
func (e *Editor) Selection() []string {
	return slices.Clone(e.selection)
}

// DeleteSelection deletes everything selected as one undo step. Entities
// that policy protects (locked, or members of a locked group) are skipped.
// Dependents go before their owners (snippets and waypoints, then edges,
// nodes and finally groups) so that each step captures the scene as the
// previous steps left it.
func (e *Editor) DeleteSelection() error {
	if err := e.commit(); err != nil {
		return err
	}
	sel := e.selection
	e.selection = nil

	var snippets, waypoints, edges, nodes, groups []string
	for _, id := range sel {
		if _, _, _, ok := e.scene.Snippet(id); ok {
			snippets = append(snippets, id)
		} else if _, ok := e.scene.Waypoint(id); ok {
			waypoints = append(waypoints, id)
		} else if _, ok := e.scene.Edge(id); ok {
			edges = append(edges, id)
		} else if _, ok := e.scene.Node(id); ok {
			nodes = append(nodes, id)
		} else if _, ok := e.scene.Group(id); ok {
			groups = append(groups, id)
		}
	}

	var steps []command.Command
	rollback := func() {
		for i := len(steps) - 1; i >= 0; i-- {
			_ = steps[i].Revert(e.scene)
		}
	}
	run := func(id string, build func(string) (command.Command, error)) error {
		// earlier steps may already have taken this one with them
		if !e.scene.Has(id) {
			return nil
		}
		c, err := build(id)
		if errors.Is(err, command.ErrLocked) {
			e.logger.Debug("selection: skipped locked", "id", id)
			return nil
		}
		if err != nil {
			return err
		}
		if err := c.Apply(e.scene); err != nil {
			return err
		}
		steps = append(steps, c)
		return nil
	}

	for _, batch := range []struct {
		ids   []string
		build func(string) (command.Command, error)
	}{
		{snippets, e.removeSnippetCommand},
		{waypoints, e.deleteWaypointCommand},
		{edges, e.deleteEdgeCommand},
		{nodes, e.deleteNodeCommand},
		{groups, e.deleteGroupCommand},
	} {
		for _, id := range batch.ids {
			if err := run(id, batch.build); err != nil {
				rollback()
				return err
			}
		}
	}

	switch len(steps) {
	case 0:
		return nil
	case 1:
		e.stack.Push(steps[0])
	default:
		e.stack.Push(command.NewBatch(e.clock.Now(), steps...))
	}
	return nil
}

func (e *Editor) deleteWaypointCommand(id string) (command.Command, error) {
	rec, ok := command.CaptureWaypoint(e.scene, id)
	if !ok {
		return command.Command{}, notFound("waypoint", id)
	}
	if rec.Waypoint.Locked {
		return command.Command{}, locked("delete waypoint", id)
	}
	return command.NewWaypointDelete(rec, e.clock.Now()), nil
}

func (e *Editor) deleteEdgeCommand(id string) (command.Command, error) {
	rec, ok := command.CaptureEdge(e.scene, id)
	if !ok {
		return command.Command{}, notFound("edge", id)
	}
	return command.NewEdgeDelete(rec, e.clock.Now()), nil
}

func (e *Editor) removeSnippetCommand(id string) (command.Command, error) {
	rec, ok := command.CaptureSnippet(e.scene, id)
	if !ok {
		return command.Command{}, notFound("snippet", id)
	}
	return command.NewSnippetRemove(rec, e.clock.Now()), nil
}
