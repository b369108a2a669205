package command

import (
	"errors"
	"fmt"

	"github.com/roach88/trellis/internal/scene"
)

var (
	// ErrInvalidTarget indicates the command references an entity that is no
	// longer present.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrLocked indicates a change blocked by a lock flag.
	ErrLocked = errors.New("locked")

	// ErrBadState indicates before/after states that do not fit the kind.
	ErrBadState = errors.New("state does not match command kind")

	// ErrUnknownKind indicates a kind with no dispatch entry.
	ErrUnknownKind = errors.New("unknown command kind")
)

// invalid converts a scene lookup failure into ErrInvalidTarget, leaving any
// other error as is.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, scene.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	return err
}

func missing(kind Kind, id string) error {
	return fmt.Errorf("%w: %s %s not in scene", ErrInvalidTarget, kind, id)
}

func badState(kind Kind, s State) error {
	return fmt.Errorf("%w: %s got %T", ErrBadState, kind, s)
}
