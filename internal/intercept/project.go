package intercept

import (
	"fmt"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// clampIndex bounds a requested list position to [0, n-1].
func clampIndex(index, n int) int {
	return max(0, min(index, n-1))
}

// MoveSnippet reorders a snippet within its node. The index is clamped;
// moving a snippet to where it already is records nothing.
func (e *Editor) MoveSnippet(id string, index int) error {
	nodeID, from, _, ok := e.scene.Snippet(id)
	if !ok {
		return notFound("snippet", id)
	}
	n, _ := e.scene.Node(nodeID)
	to := clampIndex(index, len(n.Snippets))
	if to == from {
		return nil
	}
	return e.exec(command.NewSnippetMove(id, from, to, e.clock.Now()))
}

// EditMetadata sets one of a node's bibliographic fields (scene.MetaYear,
// scene.MetaConference, scene.MetaModuleName).
func (e *Editor) EditMetadata(nodeID, field, value string) error {
	from, err := e.scene.Metadata(nodeID, field)
	if err != nil {
		return err
	}
	if from == value {
		return nil
	}
	return e.exec(command.NewNodeMetadataEdit(nodeID, field, from, value, e.clock.Now()))
}

// AddTodo appends an item to the project checklist and returns its ID.
func (e *Editor) AddTodo(text string) (string, error) {
	if err := e.commit(); err != nil {
		return "", err
	}
	id, err := e.newID()
	if err != nil {
		return "", err
	}
	rec := command.TodoRecord{Todo: scene.Todo{ID: id, Text: text}, Index: len(e.scene.Todos())}
	if err := e.record(command.NewTodoAdd(rec, e.clock.Now())); err != nil {
		return "", err
	}
	return id, nil
}

func (e *Editor) RemoveTodo(id string) error {
	rec, ok := command.CaptureTodo(e.scene, id)
	if !ok {
		return notFound("todo", id)
	}
	return e.exec(command.NewTodoRemove(rec, e.clock.Now()))
}

func (e *Editor) EditTodo(id, text string) error {
	td, _, ok := e.scene.Todo(id)
	if !ok {
		return notFound("todo", id)
	}
	if td.Text == text {
		return nil
	}
	return e.exec(command.NewTodoEdit(id, td.Text, text, e.clock.Now()))
}

func (e *Editor) ToggleTodo(id string) error {
	td, _, ok := e.scene.Todo(id)
	if !ok {
		return notFound("todo", id)
	}
	return e.exec(command.NewTodoToggle(id, td.Done, e.clock.Now()))
}

// MoveTodo reorders a checklist item. The index is clamped.
func (e *Editor) MoveTodo(id string, index int) error {
	_, from, ok := e.scene.Todo(id)
	if !ok {
		return notFound("todo", id)
	}
	to := clampIndex(index, len(e.scene.Todos()))
	if to == from {
		return nil
	}
	return e.exec(command.NewTodoMove(id, from, to, e.clock.Now()))
}

// AddTag appends a name to the project tag catalogue. Names are
// NFC-normalized; adding one that is already listed records nothing.
// Node tags are separate and go through AssignTag.
func (e *Editor) AddTag(name string) error {
	name = scene.NormalizeTag(name)
	if name == "" {
		return fmt.Errorf("empty tag: %w", ErrInvalidInput)
	}
	if e.scene.CatalogIndex(name) >= 0 {
		return nil
	}
	rec := command.CatalogTag{Name: name, Index: len(e.scene.CatalogTags())}
	return e.exec(command.NewTagAdd(rec, e.clock.Now()))
}

func (e *Editor) RemoveTag(name string) error {
	rec, ok := command.CaptureCatalogTag(e.scene, scene.NormalizeTag(name))
	if !ok {
		return notFound("tag", name)
	}
	return e.exec(command.NewTagRemove(rec, e.clock.Now()))
}

// RenameTag renames a catalogue entry in place. Nodes carrying the old name
// keep it.
func (e *Editor) RenameTag(from, to string) error {
	from, to = scene.NormalizeTag(from), scene.NormalizeTag(to)
	if to == "" {
		return fmt.Errorf("empty tag: %w", ErrInvalidInput)
	}
	if e.scene.CatalogIndex(from) < 0 {
		return notFound("tag", from)
	}
	if from == to {
		return nil
	}
	if e.scene.CatalogIndex(to) >= 0 {
		return fmt.Errorf("tag %s: %w", to, scene.ErrDuplicate)
	}
	return e.exec(command.NewTagRename(from, to, e.clock.Now()))
}

// MoveTag reorders a catalogue entry. The index is clamped.
func (e *Editor) MoveTag(name string, index int) error {
	name = scene.NormalizeTag(name)
	from := e.scene.CatalogIndex(name)
	if from < 0 {
		return notFound("tag", name)
	}
	to := clampIndex(index, len(e.scene.CatalogTags()))
	if to == from {
		return nil
	}
	return e.exec(command.NewTagMove(name, from, to, e.clock.Now()))
}
