package command

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is the persisted form of a Command.
type Entry struct {
	Kind     Kind            `json:"kind"`
	Target   string          `json:"target_id,omitempty"`
	MergeKey string          `json:"merge_key,omitempty"`
	Before   json.RawMessage `json:"before_state,omitempty"`
	After    json.RawMessage `json:"after_state,omitempty"`
	At       time.Time       `json:"timestamp"`
	Steps    []Entry         `json:"steps,omitempty"`
}

// Encode converts c to its persisted form.
func Encode(c Command) (Entry, error) {
	e := Entry{Kind: c.Kind, Target: c.Target, MergeKey: c.MergeKey, At: c.At}
	if c.Kind == KindBatch {
		e.Steps = make([]Entry, 0, len(c.Steps))
		for _, step := range c.Steps {
			se, err := Encode(step)
			if err != nil {
				return Entry{}, err
			}
			e.Steps = append(e.Steps, se)
		}
		return e, nil
	}
	var err error
	if e.Before, err = json.Marshal(c.Before); err != nil {
		return Entry{}, fmt.Errorf("encode %s before: %w", c.Kind, err)
	}
	if e.After, err = json.Marshal(c.After); err != nil {
		return Entry{}, fmt.Errorf("encode %s after: %w", c.Kind, err)
	}
	return e, nil
}

// Decode converts a persisted entry back into a Command. An entry whose kind
// (or any step's kind) is not known returns ErrUnknownKind; callers skip it.
func Decode(e Entry) (Command, error) {
	c := Command{Kind: e.Kind, Target: e.Target, MergeKey: e.MergeKey, At: e.At}
	if e.Kind == KindBatch {
		if len(e.Steps) == 0 {
			return Command{}, fmt.Errorf("decode batch: %w", ErrBadState)
		}
		for i, se := range e.Steps {
			step, err := Decode(se)
			if err != nil {
				return Command{}, fmt.Errorf("decode batch step %d: %w", i, err)
			}
			c.Steps = append(c.Steps, step)
		}
		return c, nil
	}
	h, ok := table[e.Kind]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if e.Target == "" {
		return Command{}, fmt.Errorf("decode %s: empty target: %w", e.Kind, ErrBadState)
	}
	var err error
	if c.Before, err = h.decode(e.Before); err != nil {
		return Command{}, fmt.Errorf("decode %s before: %w", e.Kind, err)
	}
	if c.After, err = h.decode(e.After); err != nil {
		return Command{}, fmt.Errorf("decode %s after: %w", e.Kind, err)
	}
	if _, absent := c.Before.(Absent); absent {
		if _, absent := c.After.(Absent); absent {
			return Command{}, fmt.Errorf("decode %s: both states absent: %w", e.Kind, ErrBadState)
		}
	}
	return c, nil
}
