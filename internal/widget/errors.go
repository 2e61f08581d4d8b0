package widget

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTag is returned for element text that is not a valid tag.
	ErrMalformedTag = errors.New("malformed element tag")

	// ErrDuplicateTag is returned when registering a tag twice.
	ErrDuplicateTag = errors.New("tag already registered")

	// ErrInvalidDefinition is returned for a definition with no renderer.
	ErrInvalidDefinition = errors.New("invalid widget definition")
)

// ParseError describes an element that could not be parsed.
type ParseError struct {
	From int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("element at %d: %v", e.From, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
