package intercept

import (
	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/scene"
)

// EditText records typing into a field: the content changes and the caret
// moves to cursor/anchor. Keystrokes in the same field inside the merge
// window become one undo step.
func (e *Editor) EditText(ref scene.TextRef, value string, cursor, anchor int) error {
	from, err := e.scene.Text(ref)
	if err != nil {
		return err
	}
	to := scene.TextState{Value: value, Cursor: cursor, Anchor: anchor}.Clamp()
	return e.editText(ref, from, to)
}

// ReplaceText records a content change that did not come from the caret,
// such as a paste from another widget. The caret stays where it was,
// clamped to the new content.
func (e *Editor) ReplaceText(ref scene.TextRef, value string) error {
	from, err := e.scene.Text(ref)
	if err != nil {
		return err
	}
	return e.editText(ref, from, from.Replace(value))
}

func (e *Editor) editText(ref scene.TextRef, from, to scene.TextState) error {
	if from == to {
		return nil
	}
	return e.exec(command.NewEditText(ref, from, to, e.clock.Now()))
}

// CommitText ends the current typing run (focus out, Enter). The next
// keystroke starts a new undo step even inside the merge window.
func (e *Editor) CommitText() {
	e.stack.Seal()
}
