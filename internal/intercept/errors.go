package intercept

import "errors"

var (
	// ErrIDReused indicates the ID generator handed out an ID the scene has
	// already used this session.
	ErrIDReused = errors.New("entity id reused")

	// ErrNoGesture indicates DragTo or EndMove without BeginMove.
	ErrNoGesture = errors.New("no move gesture in progress")

	// ErrSelfLoop indicates an edge from a node to itself.
	ErrSelfLoop = errors.New("edge source and target are the same node")

	// ErrInvalidInput indicates a malformed argument such as an empty tag,
	// a negative size or an unknown snippet type.
	ErrInvalidInput = errors.New("invalid input")
)
