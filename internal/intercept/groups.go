package intercept

import (
	"fmt"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// CreateGroup adds a group and binds members to it in order. Members that
// belong to another, unlocked group leave it as part of the same undo step.
func (e *Editor) CreateGroup(name string, p scene.Point, size scene.Size, members ...string) (string, error) {
	if size.W < 0 || size.H < 0 {
		return "", fmt.Errorf("group size %v: %w", size, ErrInvalidInput)
	}
	if err := e.commit(); err != nil {
		return "", err
	}
	now := e.clock.Now()
	var steps []command.Command
	seen := make(map[string]bool, len(members))
	for _, id := range members {
		if seen[id] {
			return "", fmt.Errorf("member %s listed twice: %w", id, ErrInvalidInput)
		}
		seen[id] = true
		if _, ok := e.scene.Node(id); !ok {
			return "", notFound("node", id)
		}
		if e.scene.GroupLocked(id) {
			return "", locked("regroup member of locked group", id)
		}
		if m := command.CaptureMembership(e.scene, id); m.GroupID != "" {
			steps = append(steps, command.NewGroupUnbind(id, m, now))
		}
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	g := scene.Group{
		ID:       id,
		Name:     scene.TextState{Value: name},
		Position: p,
		Size:     size,
		Members:  append([]string(nil), members...),
	}
	if len(g.Members) == 0 {
		g.Members = nil
	}
	c := command.NewGroupCreate(command.GroupRecord{Group: g}, now)
	if len(steps) > 0 {
		c = command.NewBatch(now, append(steps, c)...)
	}
	if err := e.record(c); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteGroup removes a group. Its members stay on the canvas, unbound.
func (e *Editor) DeleteGroup(id string) error {
	c, err := e.deleteGroupCommand(id)
	if err != nil {
		return err
	}
	return e.exec(c)
}

func (e *Editor) deleteGroupCommand(id string) (command.Command, error) {
	rec, ok := command.CaptureGroup(e.scene, id)
	if !ok {
		return command.Command{}, notFound("group", id)
	}
	if rec.Group.Locked {
		return command.Command{}, locked("delete group", id)
	}
	return command.NewGroupDelete(rec, e.clock.Now()), nil
}

// ResizeGroup sets a group's rectangle. Members are not moved.
func (e *Editor) ResizeGroup(id string, p scene.Point, size scene.Size) error {
	from, ok := command.CaptureBounds(e.scene, id)
	if !ok {
		return notFound("group", id)
	}
	if size.W < 0 || size.H < 0 {
		return fmt.Errorf("group size %v: %w", size, ErrInvalidInput)
	}
	g, _ := e.scene.Group(id)
	if g.Locked {
		return locked("resize group", id)
	}
	to := command.Bounds{Position: p, Size: size}
	if from == to {
		return nil
	}
	return e.exec(command.NewGroupResize(id, from, to, e.clock.Now()))
}

// BindGroup moves a node into a group, appended after the current members.
// Neither the group being joined nor the one being left may be locked.
func (e *Editor) BindGroup(nodeID, groupID string) error {
	if _, ok := e.scene.Node(nodeID); !ok {
		return notFound("node", nodeID)
	}
	g, ok := e.scene.Group(groupID)
	if !ok {
		return notFound("group", groupID)
	}
	from := command.CaptureMembership(e.scene, nodeID)
	if from.GroupID == groupID {
		return nil
	}
	if g.Locked {
		return locked("bind into group", groupID)
	}
	if e.scene.GroupLocked(nodeID) {
		return locked("unbind member of locked group", nodeID)
	}
	to := command.Membership{GroupID: groupID, Index: len(g.Members)}
	return e.exec(command.NewGroupBind(nodeID, from, to, e.clock.Now()))
}

// UnbindGroup takes a node out of its group. An unbound node records
// nothing.
func (e *Editor) UnbindGroup(nodeID string) error {
	if _, ok := e.scene.Node(nodeID); !ok {
		return notFound("node", nodeID)
	}
	from := command.CaptureMembership(e.scene, nodeID)
	if from.GroupID == "" {
		return nil
	}
	if e.scene.GroupLocked(nodeID) {
		return locked("unbind member of locked group", nodeID)
	}
	return e.exec(command.NewGroupUnbind(nodeID, from, e.clock.Now()))
}
