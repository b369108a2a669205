package scene

import "errors"

var (
	// ErrNotFound indicates the referenced entity is not in the scene.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate indicates an entity with the same ID is already present.
	ErrDuplicate = errors.New("entity already exists")

	// ErrAttached indicates the entity still has dependents (edges,
	// waypoints, members or a group) that must be detached first.
	ErrAttached = errors.New("entity has attached dependents")

	// ErrUnknownField indicates a text field that the target does not have.
	ErrUnknownField = errors.New("unknown text field")

	// ErrInvalidDocument indicates a document whose references do not line up.
	ErrInvalidDocument = errors.New("invalid scene document")
)
