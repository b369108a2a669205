package intercept

import (
	"fmt"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// CreateNode adds a node at p and returns its ID.
func (e *Editor) CreateNode(kind scene.NodeKind, p scene.Point, title string) (string, error) {
	if kind != scene.KindPipelineModule && kind != scene.KindReferencePaper {
		return "", fmt.Errorf("node kind %q: %w", kind, ErrInvalidInput)
	}
	if err := e.commit(); err != nil {
		return "", err
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	n := scene.Node{ID: id, Kind: kind, Position: p, Title: scene.TextState{Value: title}}
	rec := command.NodeRecord{Node: n, Membership: command.Unbound}
	if err := e.record(command.NewCreateNode(rec, e.clock.Now())); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteNode removes a node together with its incident edges. Locked nodes
// and members of locked groups cannot be deleted.
func (e *Editor) DeleteNode(id string) error {
	c, err := e.deleteNodeCommand(id)
	if err != nil {
		return err
	}
	return e.exec(c)
}

func (e *Editor) deleteNodeCommand(id string) (command.Command, error) {
	n, ok := e.scene.Node(id)
	if !ok {
		return command.Command{}, notFound("node", id)
	}
	if n.Locked {
		return command.Command{}, locked("delete node", id)
	}
	if e.scene.GroupLocked(id) {
		return command.Command{}, locked("delete member of locked group", id)
	}
	rec, _ := command.CaptureNode(e.scene, id)
	return command.NewDeleteNode(rec, e.clock.Now()), nil
}

// ToggleFlag flips the flag of a node.
func (e *Editor) ToggleFlag(id string) error {
	on, err := e.scene.Flagged(id)
	if err != nil {
		return notFound("node", id)
	}
	return e.exec(command.NewToggleFlag(id, on, e.clock.Now()))
}

// ToggleLock flips the lock of a node, waypoint or group. Locking is always
// allowed, including on members of locked groups.
func (e *Editor) ToggleLock(id string) error {
	on, err := e.scene.Locked(id)
	if err != nil {
		return notFound("lockable", id)
	}
	return e.exec(command.NewToggleLock(id, on, e.clock.Now()))
}

// AssignTag adds (present) or removes a tag. Tags are NFC-normalized first;
// assigning a tag the node already has, or removing one it lacks, records
// nothing.
func (e *Editor) AssignTag(nodeID, tag string, present bool) error {
	tag = scene.NormalizeTag(tag)
	if tag == "" {
		return fmt.Errorf("empty tag: %w", ErrInvalidInput)
	}
	has, err := e.scene.HasTag(nodeID, tag)
	if err != nil {
		return notFound("node", nodeID)
	}
	if has == present {
		return nil
	}
	return e.exec(command.NewTagAssign(nodeID, tag, present, e.clock.Now()))
}

// AddSnippet appends a snippet to a node and returns its ID.
func (e *Editor) AddSnippet(nodeID, typ, content, label string) (string, error) {
	if typ != "text" && typ != "image" {
		return "", fmt.Errorf("snippet type %q: %w", typ, ErrInvalidInput)
	}
	n, ok := e.scene.Node(nodeID)
	if !ok {
		return "", notFound("node", nodeID)
	}
	if err := e.commit(); err != nil {
		return "", err
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	rec := command.SnippetRecord{
		NodeID:  nodeID,
		Index:   len(n.Snippets),
		Snippet: scene.Snippet{ID: id, Type: typ, Content: content, SourceLabel: label},
	}
	if err := e.record(command.NewSnippetAdd(rec, e.clock.Now())); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveSnippet detaches a snippet from its node.
func (e *Editor) RemoveSnippet(id string) error {
	c, err := e.removeSnippetCommand(id)
	if err != nil {
		return err
	}
	return e.exec(c)
}
