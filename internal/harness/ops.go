package harness

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/roach88/trellis/internal/scene"
)

type opFunc func(r *runner, a *args) (string, error)

// ops maps step names to editor calls. An op returns the ID it created, if
// any.
var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"create_node": func(r *runner, a *args) (string, error) {
			kind := scene.NodeKind(a.str("kind", string(scene.KindPipelineModule)))
			return r.editor.CreateNode(kind, a.point(), a.str("title", ""))
		},
		"delete_node": func(r *runner, a *args) (string, error) {
			return "", r.editor.DeleteNode(a.str("id", ""))
		},
		"move": func(r *runner, a *args) (string, error) {
			return "", r.editor.MoveTo(a.str("id", ""), a.point())
		},
		"nudge": func(r *runner, a *args) (string, error) {
			return "", r.editor.Nudge(a.str("id", ""), a.num("dx"), a.num("dy"))
		},
		"begin_move": func(r *runner, a *args) (string, error) {
			return "", r.editor.BeginMove(a.str("id", ""))
		},
		"drag": func(r *runner, a *args) (string, error) {
			return "", r.editor.DragTo(a.point())
		},
		"end_move": func(r *runner, a *args) (string, error) {
			return "", r.editor.EndMove()
		},
		"cancel_move": func(r *runner, a *args) (string, error) {
			return "", r.editor.CancelMove()
		},
		"edit_text": func(r *runner, a *args) (string, error) {
			value := a.str("value", "")
			cursor := a.integer("cursor", utf8.RuneCountInString(value))
			return "", r.editor.EditText(a.ref(), value, cursor, a.integer("anchor", cursor))
		},
		"replace_text": func(r *runner, a *args) (string, error) {
			return "", r.editor.ReplaceText(a.ref(), a.str("value", ""))
		},
		"commit_text": func(r *runner, a *args) (string, error) {
			r.editor.CommitText()
			return "", nil
		},
		"toggle_flag": func(r *runner, a *args) (string, error) {
			return "", r.editor.ToggleFlag(a.str("id", ""))
		},
		"toggle_lock": func(r *runner, a *args) (string, error) {
			return "", r.editor.ToggleLock(a.str("id", ""))
		},
		"assign_tag": func(r *runner, a *args) (string, error) {
			return "", r.editor.AssignTag(a.str("id", ""), a.str("tag", ""), a.boolean("present", true))
		},
		"add_snippet": func(r *runner, a *args) (string, error) {
			return r.editor.AddSnippet(a.str("id", ""), a.str("type", "text"), a.str("content", ""), a.str("label", ""))
		},
		"remove_snippet": func(r *runner, a *args) (string, error) {
			return "", r.editor.RemoveSnippet(a.str("id", ""))
		},
		"move_snippet": func(r *runner, a *args) (string, error) {
			return "", r.editor.MoveSnippet(a.str("id", ""), a.integer("index", 0))
		},
		"edit_metadata": func(r *runner, a *args) (string, error) {
			return "", r.editor.EditMetadata(a.str("id", ""), a.str("field", ""), a.str("value", ""))
		},
		"add_todo": func(r *runner, a *args) (string, error) {
			return r.editor.AddTodo(a.str("text", ""))
		},
		"remove_todo": func(r *runner, a *args) (string, error) {
			return "", r.editor.RemoveTodo(a.str("id", ""))
		},
		"edit_todo": func(r *runner, a *args) (string, error) {
			return "", r.editor.EditTodo(a.str("id", ""), a.str("text", ""))
		},
		"toggle_todo": func(r *runner, a *args) (string, error) {
			return "", r.editor.ToggleTodo(a.str("id", ""))
		},
		"move_todo": func(r *runner, a *args) (string, error) {
			return "", r.editor.MoveTodo(a.str("id", ""), a.integer("index", 0))
		},
		"add_tag": func(r *runner, a *args) (string, error) {
			return "", r.editor.AddTag(a.str("name", ""))
		},
		"remove_tag": func(r *runner, a *args) (string, error) {
			return "", r.editor.RemoveTag(a.str("name", ""))
		},
		"rename_tag": func(r *runner, a *args) (string, error) {
			return "", r.editor.RenameTag(a.str("from", ""), a.str("to", ""))
		},
		"move_tag": func(r *runner, a *args) (string, error) {
			return "", r.editor.MoveTag(a.str("name", ""), a.integer("index", 0))
		},
		"create_edge": func(r *runner, a *args) (string, error) {
			return r.editor.CreateEdge(a.str("source", ""), a.str("target", ""))
		},
		"delete_edge": func(r *runner, a *args) (string, error) {
			return "", r.editor.DeleteEdge(a.str("id", ""))
		},
		"insert_waypoint": func(r *runner, a *args) (string, error) {
			return r.editor.InsertWaypoint(a.str("edge", ""), a.integer("index", 0), a.point())
		},
		"delete_waypoint": func(r *runner, a *args) (string, error) {
			return "", r.editor.DeleteWaypoint(a.str("id", ""))
		},
		"create_group": func(r *runner, a *args) (string, error) {
			return r.editor.CreateGroup(a.str("name", ""), a.point(), a.size(), a.strs("members")...)
		},
		"delete_group": func(r *runner, a *args) (string, error) {
			return "", r.editor.DeleteGroup(a.str("id", ""))
		},
		"resize_group": func(r *runner, a *args) (string, error) {
			return "", r.editor.ResizeGroup(a.str("id", ""), a.point(), a.size())
		},
		"bind": func(r *runner, a *args) (string, error) {
			return "", r.editor.BindGroup(a.str("node", ""), a.str("group", ""))
		},
		"unbind": func(r *runner, a *args) (string, error) {
			return "", r.editor.UnbindGroup(a.str("node", ""))
		},
		"select": func(r *runner, a *args) (string, error) {
			r.editor.Select(a.strs("ids")...)
			return "", nil
		},
		"delete_selection": func(r *runner, a *args) (string, error) {
			return "", r.editor.DeleteSelection()
		},
		"undo": func(r *runner, a *args) (string, error) {
			return "", r.editor.Undo()
		},
		"redo": func(r *runner, a *args) (string, error) {
			return "", r.editor.Redo()
		},
		"seal": func(r *runner, a *args) (string, error) {
			r.stack.Seal()
			return "", nil
		},
		"advance": func(r *runner, a *args) (string, error) {
			r.advance(time.Duration(a.integer("ms", 0)) * time.Millisecond)
			return "", nil
		},
		"reopen": func(r *runner, a *args) (string, error) {
			return "", r.reopen(a.boolean("seal", false))
		},
	}
}

// args reads typed step arguments. The first type mismatch is kept in err
// and aborts the run.
type args struct {
	m   map[string]any
	err error
}

func (a *args) fail(key string, v any, want string) {
	if a.err == nil {
		a.err = fmt.Errorf("argument %s: %v is not %s", key, v, want)
	}
}

func (a *args) str(key, def string) string {
	v, ok := a.m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		a.fail(key, v, "a string")
	}
	return s
}

func (a *args) num(key string) float64 {
	switch v := a.m[key].(type) {
	case nil:
		return 0
	case int:
		return float64(v)
	case float64:
		return v
	default:
		a.fail(key, v, "a number")
		return 0
	}
}

func (a *args) integer(key string, def int) int {
	switch v := a.m[key].(type) {
	case nil:
		return def
	case int:
		return v
	default:
		a.fail(key, v, "an integer")
		return def
	}
}

func (a *args) boolean(key string, def bool) bool {
	switch v := a.m[key].(type) {
	case nil:
		return def
	case bool:
		return v
	default:
		a.fail(key, v, "a boolean")
		return def
	}
}

func (a *args) strs(key string) []string {
	switch v := a.m[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				a.fail(key, item, "a string")
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		a.fail(key, v, "a list")
		return nil
	}
}

func (a *args) point() scene.Point {
	return scene.Point{X: a.num("x"), Y: a.num("y")}
}

func (a *args) size() scene.Size {
	return scene.Size{W: a.num("w"), H: a.num("h")}
}

func (a *args) ref() scene.TextRef {
	return scene.TextRef{Target: a.str("id", ""), Field: a.str("field", scene.FieldTitle)}
}
