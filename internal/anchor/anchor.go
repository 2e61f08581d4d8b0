package anchor

import (
	"github.com/dshills/marginalia/internal/text"
)

// Anchor is a serializable reference to a range.
type Anchor struct {
	ID string `json:"id" yaml:"id"`
}

// IsZero returns true for the zero anchor, which never resolves.
func (a Anchor) IsZero() bool {
	return a.ID == ""
}

// Service creates and resolves anchors.
//
// Implementations must keep a range stable under edits that do not touch
// it and must never panic; Resolve reports false for content that is gone.
type Service interface {
	Create(r text.Range, doc text.Doc) Anchor
	Resolve(a Anchor, doc text.Doc) (text.Range, bool)
}

// Mapper is implemented by services that follow edits by being told about
// every change set.
type Mapper interface {
	Map(cs text.ChangeSet)
}
