package persist

import "errors"

var (
	// ErrCorruptHistory indicates a history blob that cannot be trusted.
	// The history is discarded; project content is unaffected.
	ErrCorruptHistory = errors.New("corrupt history")

	// ErrNotFound indicates no history has been saved for the project.
	ErrNotFound = errors.New("history not found")
)
