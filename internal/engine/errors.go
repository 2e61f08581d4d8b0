package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine is closed")

	// ErrNoCheckbox indicates there is no toggleable task at a position.
	ErrNoCheckbox = errors.New("no checkbox at position")
)
