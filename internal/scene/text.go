package scene

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// caret is the cursor/selection part of a TextState, kept aside for fields
// that are persisted as plain strings (snippet content and labels).
type caret struct {
	cursor, anchor int
}

// textAccess reads and writes one text field.
type textAccess struct {
	get func() TextState
	set func(TextState)
}

// Text returns the current state of a text field.
func (s *Scene) Text(ref TextRef) (TextState, error) {
	f, err := s.textField(ref)
	if err != nil {
		return TextState{}, err
	}
	return f.get(), nil
}

// SetText replaces a text field including its caret and selection. This is
// the path used when the full state is known: user typing and history
// replay.
func (s *Scene) SetText(ref TextRef, t TextState) error {
	f, err := s.textField(ref)
	if err != nil {
		return err
	}
	f.set(t)
	return nil
}

func (s *Scene) textField(ref TextRef) (textAccess, error) {
	var p *TextState
	switch ref.Field {
	case FieldDescription:
		if ref.Target == ProjectTarget {
			p = &s.description
		}
	case FieldTitle:
		if n, ok := s.nodes[ref.Target]; ok {
			p = &n.Title
		}
	case FieldName:
		if g, ok := s.groups[ref.Target]; ok {
			p = &g.Name
		}
	case FieldContent, FieldSourceLabel:
		if _, _, _, ok := s.Snippet(ref.Target); ok {
			return s.snippetField(ref), nil
		}
	}
	if p == nil {
		if s.Has(ref.Target) {
			return textAccess{}, fmt.Errorf("text %s: %w", ref, ErrUnknownField)
		}
		return textAccess{}, fmt.Errorf("text %s: %w", ref, ErrNotFound)
	}
	return textAccess{
		get: func() TextState { return *p },
		set: func(t TextState) { *p = t },
	}, nil
}

func (s *Scene) snippetField(ref TextRef) textAccess {
	value := func() *string {
		nodeID, index, _, _ := s.Snippet(ref.Target)
		sn := &s.nodes[nodeID].Snippets[index]
		if ref.Field == FieldSourceLabel {
			return &sn.SourceLabel
		}
		return &sn.Content
	}
	return textAccess{
		get: func() TextState {
			c := s.carets[ref]
			return TextState{Value: *value(), Cursor: c.cursor, Anchor: c.anchor}
		},
		set: func(t TextState) {
			*value() = t.Value
			if t.Cursor == 0 && t.Anchor == 0 {
				delete(s.carets, ref)
				return
			}
			s.carets[ref] = caret{cursor: t.Cursor, anchor: t.Anchor}
		},
	}
}

// NormalizeTag trims surrounding space and NFC-normalizes a tag name so
// visually identical tags compare equal.
func NormalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}
