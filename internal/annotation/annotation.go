package annotation

import (
	"cmp"
	"slices"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
)

// Entry is an externally owned annotation as handed to the store.
type Entry struct {
	ID     string        `json:"id" yaml:"id"`
	Anchor anchor.Anchor `json:"anchor" yaml:"anchor"`
}

// Annotation is an entry plus the range derived for the current document.
type Annotation struct {
	ID     string
	Anchor anchor.Anchor

	// Range is meaningful only when Resolved is set.
	Range    text.Range
	Resolved bool

	// Deleted is set once the range has collapsed and OnDelete has fired.
	// It clears when the annotation resolves to a non-empty range again.
	Deleted bool
}

// Active reports whether the annotation currently takes part in decoration
// and proximity.
func (a Annotation) Active() bool {
	return a.Resolved && !a.Deleted
}

func (a Annotation) live() bool {
	return a.Active() && !a.Range.IsEmpty()
}

// SelectionState names the annotation containing the cursor, or failing
// that the one nearest to it. Empty strings mean unset.
type SelectionState struct {
	Current string `json:"current,omitempty" yaml:"current,omitempty"`
	Closest string `json:"closest,omitempty" yaml:"closest,omitempty"`
}

// IsZero reports whether neither field is set.
func (s SelectionState) IsZero() bool {
	return s.Current == "" && s.Closest == ""
}

// State is the reducer state.
type State struct {
	Annotations []Annotation
	Selection   SelectionState
}

// Find returns the annotation with the given id.
func (s State) Find(id string) (Annotation, bool) {
	for _, a := range s.Annotations {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// Live reports whether id resolves to a non-empty range.
func (s State) Live(id string) bool {
	a, ok := s.Find(id)
	return ok && a.live()
}

// Span is a resolved annotation range.
type Span struct {
	ID    string
	Range text.Range
}

// Spans returns every active annotation range in document order.
func (s State) Spans() []Span {
	var out []Span
	for _, a := range s.Annotations {
		if a.Active() {
			out = append(out, Span{ID: a.ID, Range: a.Range})
		}
	}
	slices.SortFunc(out, compareSpans)
	return out
}

// compareSpans orders by from, then to, then id.
func compareSpans(a, b Span) int {
	if c := cmp.Compare(a.Range.From, b.Range.From); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Range.To, b.Range.To); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Effects understood by the store.
var (
	// SetAnnotations replaces the annotation list wholesale.
	SetAnnotations = txn.Define[[]Entry]("annotation.set")
	// SetSelection overrides the proximity scan for one transaction.
	SetSelection = txn.Define[SelectionState]("annotation.selection")
	// Restore re-registers one annotation under its original id.
	Restore = txn.Define[Entry]("annotation.restore")
)
