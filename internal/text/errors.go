package text

import "errors"

// Errors returned by text operations.
var (
	// ErrRangeInvalid indicates a range with From > To or outside the document.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrEditsOverlap indicates that edits in a change set overlap.
	ErrEditsOverlap = errors.New("edits overlap")

	// ErrLengthMismatch indicates a change set applied to a document of the wrong length.
	ErrLengthMismatch = errors.New("change set does not match document length")
)
