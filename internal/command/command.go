package command

import (
	"fmt"
	"time"

	"github.com/roach88/trellis/internal/scene"
)

// DefaultMergeWindow is the merge window for continuous gestures (typing
// and dragging).
const DefaultMergeWindow = 3 * time.Second

// Command is one reversible change.
//
// Target is the ID of the entity the command acts on (scene.ProjectTarget
// for project-level fields). MergeKey further scopes merging; two commands
// merge only when Kind, Target and MergeKey all agree. For KindBatch, Target,
// Before and After are empty and Steps holds the children in apply order.
type Command struct {
	Kind     Kind
	Target   string
	Before   State
	After    State
	At       time.Time
	MergeKey string
	Steps    []Command
}

// Apply moves the target from Before to After.
func (c Command) Apply(s *scene.Scene) error {
	if c.Kind == KindBatch {
		return c.applySteps(s)
	}
	h, ok := table[c.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	return h.transition(s, c.Kind, c.Target, c.Before, c.After)
}

// Revert moves the target from After back to Before.
func (c Command) Revert(s *scene.Scene) error {
	if c.Kind == KindBatch {
		return c.revertSteps(s)
	}
	h, ok := table[c.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	return h.transition(s, c.Kind, c.Target, c.After, c.Before)
}

// A batch is all or nothing: when a step fails the steps already taken are
// rolled back before the error is returned.
func (c Command) applySteps(s *scene.Scene) error {
	for i, step := range c.Steps {
		if err := step.Apply(s); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Steps[j].Revert(s)
			}
			return fmt.Errorf("batch step %d (%s): %w", i, step.Kind, err)
		}
	}
	return nil
}

func (c Command) revertSteps(s *scene.Scene) error {
	for i := len(c.Steps) - 1; i >= 0; i-- {
		if err := c.Steps[i].Revert(s); err != nil {
			for j := i + 1; j < len(c.Steps); j++ {
				_ = c.Steps[j].Apply(s)
			}
			return fmt.Errorf("batch step %d (%s): %w", i, c.Steps[i].Kind, err)
		}
	}
	return nil
}

// CanMergeWith reports whether next may be folded into c: same kind, target
// and merge key, and next happened no more than window after c. A zero
// window never merges, and neither does a batch.
func (c Command) CanMergeWith(next Command, window time.Duration) bool {
	if window <= 0 || c.Kind == KindBatch {
		return false
	}
	if c.Kind != next.Kind || c.Target != next.Target || c.MergeKey != next.MergeKey {
		return false
	}
	dt := next.At.Sub(c.At)
	return dt >= 0 && dt <= window
}

// MergeWith returns the command spanning c.Before to next.After. The merged
// command carries next's timestamp, so the window slides forward with each
// merge.
func (c Command) MergeWith(next Command) Command {
	merged := c
	merged.After = next.After
	merged.At = next.At
	return merged
}

// MergeWindow returns the merge window of kind k. Kinds that never merge
// return 0.
func MergeWindow(k Kind) time.Duration {
	h, ok := table[k]
	if !ok {
		return 0
	}
	return h.window
}

// Len is the number of leaf commands c stands for.
func (c Command) Len() int {
	if c.Kind != KindBatch {
		return 1
	}
	n := 0
	for _, step := range c.Steps {
		n += step.Len()
	}
	return n
}

func (c Command) String() string {
	if c.Kind == KindBatch {
		return fmt.Sprintf("batch(%d)", len(c.Steps))
	}
	return fmt.Sprintf("%s %s", c.Kind, c.Target)
}
