package intercept

import (
	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

type gesture struct {
	target string
	from   command.Placement
}

// movable refuses locked nodes, waypoints and groups, and members of
// locked groups.
func (e *Editor) movable(id string) error {
	on, err := e.scene.Locked(id)
	if err != nil {
		return notFound("move", id)
	}
	if on {
		return locked("move", id)
	}
	if e.scene.GroupLocked(id) {
		return locked("move member of locked group", id)
	}
	return nil
}

// placeAt returns from shifted so that its anchor sits at p. Group members
// move by the same offset.
func placeAt(from command.Placement, p scene.Point) command.Placement {
	dx, dy := p.Sub(from.Position)
	to := command.Placement{Position: p}
	if len(from.Members) > 0 {
		to.Members = make(map[string]scene.Point, len(from.Members))
		for id, mp := range from.Members {
			to.Members[id] = mp.Add(dx, dy)
		}
	}
	return to
}

func samePlacement(a, b command.Placement) bool {
	if a.Position != b.Position || len(a.Members) != len(b.Members) {
		return false
	}
	for id, p := range a.Members {
		if b.Members[id] != p {
			return false
		}
	}
	return true
}

// BeginMove starts a drag of a node, waypoint or group.
func (e *Editor) BeginMove(id string) error {
	if err := e.commit(); err != nil {
		return err
	}
	if err := e.movable(id); err != nil {
		return err
	}
	from, _ := command.CapturePlacement(e.scene, id)
	e.gesture = &gesture{target: id, from: from}
	return nil
}

// DragTo moves the dragged entity to p without recording anything.
func (e *Editor) DragTo(p scene.Point) error {
	if e.gesture == nil {
		return ErrNoGesture
	}
	return e.place(e.gesture.target, placeAt(e.gesture.from, p))
}

// EndMove records the whole drag as one move. A drag that ends where it
// started records nothing.
func (e *Editor) EndMove() error {
	if e.gesture == nil {
		return ErrNoGesture
	}
	return e.commit()
}

// CancelMove puts the dragged entity back and records nothing.
func (e *Editor) CancelMove() error {
	g := e.gesture
	if g == nil {
		return ErrNoGesture
	}
	e.gesture = nil
	return e.place(g.target, g.from)
}

// Dragging reports whether a gesture is in progress.
func (e *Editor) Dragging() bool { return e.gesture != nil }

// commit records a pending gesture, if any.
func (e *Editor) commit() error {
	g := e.gesture
	if g == nil {
		return nil
	}
	e.gesture = nil
	to, ok := command.CapturePlacement(e.scene, g.target)
	if !ok || samePlacement(g.from, to) {
		return nil
	}
	c := command.NewMove(g.target, g.from, to, e.clock.Now())
	e.stack.Push(c)
	e.logger.Debug("recorded gesture", "kind", c.Kind, "target", c.Target)
	return nil
}

func (e *Editor) place(id string, p command.Placement) error {
	if err := e.scene.SetPosition(id, p.Position); err != nil {
		return err
	}
	for mid, mp := range p.Members {
		_ = e.scene.SetPosition(mid, mp)
	}
	return nil
}

// MoveTo moves an entity to p in one step. Consecutive moves of the same
// entity inside the merge window collapse into one undo step.
func (e *Editor) MoveTo(id string, p scene.Point) error {
	if err := e.commit(); err != nil {
		return err
	}
	if err := e.movable(id); err != nil {
		return err
	}
	from, _ := command.CapturePlacement(e.scene, id)
	to := placeAt(from, p)
	if samePlacement(from, to) {
		return nil
	}
	return e.record(command.NewMove(id, from, to, e.clock.Now()))
}

// Nudge moves an entity by (dx, dy).
func (e *Editor) Nudge(id string, dx, dy float64) error {
	pos, ok := e.scene.Position(id)
	if !ok {
		return notFound("move", id)
	}
	return e.MoveTo(id, pos.Add(dx, dy))
}
