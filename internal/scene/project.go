package scene

import (
	"fmt"
	"slices"
)

// Todos returns the project checklist in order.
func (s *Scene) Todos() []Todo {
	return compact(slices.Clone(s.todos))
}

// Todo returns the todo with the given ID and its index in the checklist.
func (s *Scene) Todo(id string) (Todo, int, bool) {
	i := s.todoIndex(id)
	if i < 0 {
		return Todo{}, -1, false
	}
	return s.todos[i], i, true
}

func (s *Scene) todoIndex(id string) int {
	return slices.IndexFunc(s.todos, func(t Todo) bool { return t.ID == id })
}

// InsertTodo adds t to the checklist at index (clamped).
func (s *Scene) InsertTodo(t Todo, index int) error {
	if err := s.claim(t.ID); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	s.todos = insertAt(s.todos, index, t)
	return nil
}

// RemoveTodo deletes a todo and reports the index it held.
func (s *Scene) RemoveTodo(id string) (int, error) {
	i := s.todoIndex(id)
	if i < 0 {
		return -1, fmt.Errorf("remove todo %s: %w", id, ErrNotFound)
	}
	s.todos = compact(slices.Delete(s.todos, i, i+1))
	return i, nil
}

// SetTodoText replaces the text of a todo.
func (s *Scene) SetTodoText(id, text string) error {
	i := s.todoIndex(id)
	if i < 0 {
		return fmt.Errorf("set todo text %s: %w", id, ErrNotFound)
	}
	s.todos[i].Text = text
	return nil
}

// SetTodoDone marks a todo done or open.
func (s *Scene) SetTodoDone(id string, done bool) error {
	i := s.todoIndex(id)
	if i < 0 {
		return fmt.Errorf("set todo done %s: %w", id, ErrNotFound)
	}
	s.todos[i].Done = done
	return nil
}

// MoveTodo reorders the checklist so that the todo ends up at index
// (clamped).
func (s *Scene) MoveTodo(id string, index int) error {
	i := s.todoIndex(id)
	if i < 0 {
		return fmt.Errorf("move todo %s: %w", id, ErrNotFound)
	}
	s.todos = moveTo(s.todos, i, index)
	return nil
}

// CatalogTags returns the project's tag catalogue in display order. The
// catalogue is independent of the tags carried by nodes.
func (s *Scene) CatalogTags() []string {
	return compact(slices.Clone(s.tags))
}

// CatalogIndex reports the position of name in the catalogue, or -1.
func (s *Scene) CatalogIndex(name string) int {
	return slices.Index(s.tags, name)
}

// InsertCatalogTag adds name to the catalogue at index (clamped).
func (s *Scene) InsertCatalogTag(name string, index int) error {
	if name == "" {
		return fmt.Errorf("insert catalog tag: empty name: %w", ErrNotFound)
	}
	if slices.Contains(s.tags, name) {
		return fmt.Errorf("insert catalog tag %q: %w", name, ErrDuplicate)
	}
	s.tags = insertAt(s.tags, index, name)
	return nil
}

// RemoveCatalogTag deletes name from the catalogue and reports the index it
// held.
func (s *Scene) RemoveCatalogTag(name string) (int, error) {
	var i int
	s.tags, i = removeValue(s.tags, name)
	if i < 0 {
		return -1, fmt.Errorf("remove catalog tag %q: %w", name, ErrNotFound)
	}
	return i, nil
}

// RenameCatalogTag renames a catalogue entry in place.
func (s *Scene) RenameCatalogTag(from, to string) error {
	i := slices.Index(s.tags, from)
	if i < 0 {
		return fmt.Errorf("rename catalog tag %q: %w", from, ErrNotFound)
	}
	if from == to {
		return nil
	}
	if to == "" {
		return fmt.Errorf("rename catalog tag %q: empty name: %w", from, ErrNotFound)
	}
	if slices.Contains(s.tags, to) {
		return fmt.Errorf("rename catalog tag %q to %q: %w", from, to, ErrDuplicate)
	}
	s.tags[i] = to
	return nil
}

// MoveCatalogTag reorders the catalogue so that name ends up at index
// (clamped).
func (s *Scene) MoveCatalogTag(name string, index int) error {
	i := slices.Index(s.tags, name)
	if i < 0 {
		return fmt.Errorf("move catalog tag %q: %w", name, ErrNotFound)
	}
	s.tags = moveTo(s.tags, i, index)
	return nil
}
