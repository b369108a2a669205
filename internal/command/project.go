package command

import (
	"github.com/roach88/trellis/internal/scene"
)

// Transitions for node metadata, snippet order and the project-level lists
// (checklist and tag catalogue).

func moveSnippet(s *scene.Scene, kind Kind, target string, _, to State) error {
	sl, ok := to.(Slot)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.MoveSnippet(target, sl.Index))
}

func setMetadata(s *scene.Scene, kind Kind, target string, _, to State) error {
	m, ok := to.(MetadataValue)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetMetadata(target, m.Field, m.Value))
}

func todoPresence(s *scene.Scene, kind Kind, target string, from, to State) error {
	switch st := to.(type) {
	case TodoRecord:
		if s.Has(st.Todo.ID) {
			return nil
		}
		return invalid(s.InsertTodo(st.Todo, st.Index))
	case Absent:
		if _, ok := from.(TodoRecord); !ok {
			return badState(kind, from)
		}
		if _, _, ok := s.Todo(target); !ok {
			return nil
		}
		_, err := s.RemoveTodo(target)
		return invalid(err)
	default:
		return badState(kind, to)
	}
}

func setTodoText(s *scene.Scene, kind Kind, target string, _, to State) error {
	l, ok := to.(Label)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetTodoText(target, l.Value))
}

func setTodoDone(s *scene.Scene, kind Kind, target string, _, to State) error {
	sw, ok := to.(Switch)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.SetTodoDone(target, sw.On))
}

func moveTodo(s *scene.Scene, kind Kind, target string, _, to State) error {
	sl, ok := to.(Slot)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.MoveTodo(target, sl.Index))
}

func catalogPresence(s *scene.Scene, kind Kind, _ string, from, to State) error {
	switch st := to.(type) {
	case CatalogTag:
		if s.CatalogIndex(st.Name) >= 0 {
			return nil
		}
		return invalid(s.InsertCatalogTag(st.Name, st.Index))
	case Absent:
		rec, ok := from.(CatalogTag)
		if !ok {
			return badState(kind, from)
		}
		if s.CatalogIndex(rec.Name) < 0 {
			return nil
		}
		_, err := s.RemoveCatalogTag(rec.Name)
		return invalid(err)
	default:
		return badState(kind, to)
	}
}

// renameCatalogTag renames the entry holding from's name to to's name.
// Finding only the new name means the rename is already in place.
func renameCatalogTag(s *scene.Scene, kind Kind, _ string, from, to State) error {
	old, ok := from.(Label)
	if !ok {
		return badState(kind, from)
	}
	next, ok := to.(Label)
	if !ok {
		return badState(kind, to)
	}
	if s.CatalogIndex(old.Value) < 0 {
		if s.CatalogIndex(next.Value) >= 0 {
			return nil
		}
		return missing(kind, old.Value)
	}
	return invalid(s.RenameCatalogTag(old.Value, next.Value))
}

func moveCatalogTag(s *scene.Scene, kind Kind, target string, _, to State) error {
	sl, ok := to.(Slot)
	if !ok {
		return badState(kind, to)
	}
	return invalid(s.MoveCatalogTag(target, sl.Index))
}
