// Package keymap binds the history chords (undo, redo, delete) to editor
// actions.
package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/roach88/trellis/internal/config"
)

// Action names what a chord does.
type Action string

const (
	ActionUndo   Action = "undo"
	ActionRedo   Action = "redo"
	ActionDelete Action = "delete"
)

var (
	// ErrNoKeys means an action was given no chords.
	ErrNoKeys = errors.New("no keys bound")
	// ErrConflict means one chord was bound to two actions.
	ErrConflict = errors.New("chord bound twice")
)

// Chord is a key combination such as "ctrl+shift+z".
type Chord string

func (c Chord) String() string { return string(c) }

// Map holds one binding per action.
type Map struct {
	Undo   key.Binding
	Redo   key.Binding
	Delete key.Binding
}

// Default returns ctrl+z for undo, ctrl+y or ctrl+shift+z for redo and
// delete or backspace for delete.
func Default() Map {
	m, err := New([]string{"ctrl+z"}, []string{"ctrl+y", "ctrl+shift+z"}, []string{"delete", "backspace"})
	if err != nil {
		panic(err)
	}
	return m
}

// FromConfig builds a Map from the keys section of the config.
func FromConfig(k config.KeysConfig) (Map, error) {
	return New(k.Undo, k.Redo, k.Delete)
}

// New builds a Map. Chords are normalized, so "Shift+Ctrl+Z" and
// "ctrl+shift+z" are the same chord.
func New(undo, redo, del []string) (Map, error) {
	seen := map[string]Action{}
	bind := func(a Action, chords []string, desc string) (key.Binding, error) {
		if len(chords) == 0 {
			return key.Binding{}, fmt.Errorf("%s: %w", a, ErrNoKeys)
		}
		keys := make([]string, 0, len(chords))
		for _, c := range chords {
			n := Normalize(c)
			if n == "" {
				return key.Binding{}, fmt.Errorf("%s: empty chord: %w", a, ErrNoKeys)
			}
			if prev, ok := seen[n]; ok {
				return key.Binding{}, fmt.Errorf("%s: %q already bound to %s: %w", a, n, prev, ErrConflict)
			}
			seen[n] = a
			keys = append(keys, n)
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc)), nil
	}

	var (
		m   Map
		err error
	)
	if m.Undo, err = bind(ActionUndo, undo, "undo"); err != nil {
		return Map{}, err
	}
	if m.Redo, err = bind(ActionRedo, redo, "redo"); err != nil {
		return Map{}, err
	}
	if m.Delete, err = bind(ActionDelete, del, "delete selection"); err != nil {
		return Map{}, err
	}
	return m, nil
}

// modifier order in a normalized chord
var modifiers = []string{"ctrl", "alt", "shift", "meta", "cmd"}

// Normalize lowercases a chord and puts its modifiers in a fixed order.
func Normalize(chord string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	if len(parts) == 0 {
		return ""
	}
	base := strings.TrimSpace(parts[len(parts)-1])
	mods := parts[:len(parts)-1]
	for i := range mods {
		mods[i] = strings.TrimSpace(mods[i])
	}
	slices.SortStableFunc(mods, func(a, b string) int {
		return rank(a) - rank(b)
	})
	mods = slices.Compact(mods)
	return strings.Join(append(mods, base), "+")
}

func rank(mod string) int {
	if i := slices.Index(modifiers, mod); i >= 0 {
		return i
	}
	return len(modifiers)
}

// Bindings returns the bindings in help order.
func (m Map) Bindings() []key.Binding {
	return []key.Binding{m.Undo, m.Redo, m.Delete}
}

// Lookup returns the action bound to chord. Disabled bindings do not match.
func (m Map) Lookup(chord string) (Action, bool) {
	c := Chord(Normalize(chord))
	switch {
	case key.Matches(c, m.Undo):
		return ActionUndo, true
	case key.Matches(c, m.Redo):
		return ActionRedo, true
	case key.Matches(c, m.Delete):
		return ActionDelete, true
	}
	return "", false
}

// Actions is what a chord can trigger. *intercept.Editor implements it.
type Actions interface {
	Undo() error
	Redo() error
	DeleteSelection() error
}

// Dispatch runs the action bound to chord. It reports whether the chord was
// bound.
func (m Map) Dispatch(chord string, a Actions) (bool, error) {
	act, ok := m.Lookup(chord)
	if !ok {
		return false, nil
	}
	switch act {
	case ActionUndo:
		return true, a.Undo()
	case ActionRedo:
		return true, a.Redo()
	default:
		return true, a.DeleteSelection()
	}
}

// Availability reports whether undo and redo have anything to do.
type Availability interface {
	CanUndo() bool
	CanRedo() bool
}

// Sync enables the undo and redo bindings only when they have work, the way
// a menu greys out its items.
func (m *Map) Sync(a Availability) {
	m.Undo.SetEnabled(a.CanUndo())
	m.Redo.SetEnabled(a.CanRedo())
}
