package text

import (
	"sort"
	"strings"
)

// ChangeSet is an ordered batch of edits applied as one unit. Edit
// coordinates refer to the document before any of the edits are applied.
// Edits are kept sorted and never overlap or touch; touching edits are
// merged on construction.
type ChangeSet struct {
	edits []Edit
}

// Insertion describes text added by a change set, positioned in the new
// document.
type Insertion struct {
	At   int
	Text string
}

// NewChangeSet creates a change set from edits given in any order.
// Returns ErrEditsOverlap if two edits overlap and ErrRangeInvalid if an
// edit has From > To.
func NewChangeSet(edits ...Edit) (ChangeSet, error) {
	sorted := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if e.From < 0 || e.From > e.To {
			return ChangeSet{}, ErrRangeInvalid
		}
		if e.IsNoOp() {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})

	merged := make([]Edit, 0, len(sorted))
	for _, e := range sorted {
		if n := len(merged); n > 0 {
			prev := &merged[n-1]
			if e.From < prev.To {
				return ChangeSet{}, ErrEditsOverlap
			}
			if e.From == prev.To {
				prev.To = e.To
				prev.Insert += e.Insert
				continue
			}
		}
		merged = append(merged, e)
	}
	return ChangeSet{edits: merged}, nil
}

// MustChangeSet is like NewChangeSet but panics on error. Intended for
// tests and literal edits known to be valid.
func MustChangeSet(edits ...Edit) ChangeSet {
	cs, err := NewChangeSet(edits...)
	if err != nil {
		panic(err)
	}
	return cs
}

// Edits returns a copy of the edits in ascending order.
func (cs ChangeSet) Edits() []Edit {
	out := make([]Edit, len(cs.edits))
	copy(out, cs.edits)
	return out
}

// IsEmpty returns true if the change set changes nothing.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.edits) == 0
}

// Apply produces the new document. The change set must fit the document.
func (cs ChangeSet) Apply(doc Doc) (Doc, error) {
	if cs.IsEmpty() {
		return doc, nil
	}
	if cs.edits[len(cs.edits)-1].To > doc.Len() {
		return Doc{}, ErrLengthMismatch
	}

	var b strings.Builder
	b.Grow(doc.Len() + cs.Delta())
	pos := 0
	src := doc.String()
	for _, e := range cs.edits {
		b.WriteString(src[pos:e.From])
		b.WriteString(e.Insert)
		pos = e.To
	}
	b.WriteString(src[pos:])
	return NewDoc(b.String()), nil
}

// Delta returns the change in document length.
func (cs ChangeSet) Delta() int {
	d := 0
	for _, e := range cs.edits {
		d += e.Delta()
	}
	return d
}

// MapPos maps an old-document position into the new document.
//
// Positions strictly inside a replaced span collapse to its start (assoc < 0)
// or to the end of the inserted text (assoc >= 0). A position at the start
// edge of an edit follows the same rule; a position at the end edge of a
// non-empty replaced span always lands after the inserted text.
func (cs ChangeSet) MapPos(pos int, assoc int) int {
	delta := 0
	for _, e := range cs.edits {
		if e.From > pos {
			break
		}
		if e.To < pos {
			delta += e.Delta()
			continue
		}
		start := e.From + delta
		end := start + len(e.Insert)
		if pos == e.To && e.From < e.To {
			return end
		}
		if assoc < 0 {
			return start
		}
		return end
	}
	return pos + delta
}

// MapRange maps a range. From uses right association and To uses left
// association so text inserted exactly at an edge stays outside the range.
// A mapped range never has From > To.
func (cs ChangeSet) MapRange(r Range) Range {
	if r.IsEmpty() {
		p := cs.MapPos(r.From, -1)
		return Range{From: p, To: p}
	}
	from := cs.MapPos(r.From, 1)
	to := cs.MapPos(r.To, -1)
	if from > to {
		from = to
	}
	return Range{From: from, To: to}
}

// TouchedFrom returns the lowest old-document position touched by the
// change set, or -1 if it is empty.
func (cs ChangeSet) TouchedFrom() int {
	if cs.IsEmpty() {
		return -1
	}
	return cs.edits[0].From
}

// Deleted returns the non-empty old-document spans removed by the change set.
func (cs ChangeSet) Deleted() []Range {
	var out []Range
	for _, e := range cs.edits {
		if e.From < e.To {
			out = append(out, e.Range())
		}
	}
	return out
}

// Inserted returns the pieces of inserted text, positioned in the new document.
func (cs ChangeSet) Inserted() []Insertion {
	var out []Insertion
	delta := 0
	for _, e := range cs.edits {
		if e.Insert != "" {
			out = append(out, Insertion{At: e.From + delta, Text: e.Insert})
		}
		delta += e.Delta()
	}
	return out
}

// InsertedText returns all inserted text concatenated in document order.
func (cs ChangeSet) InsertedText() string {
	var b strings.Builder
	for _, e := range cs.edits {
		b.WriteString(e.Insert)
	}
	return b.String()
}

// Invert returns the change set that undoes this one when applied to the
// new document. old must be the document this change set was applied to.
func (cs ChangeSet) Invert(old Doc) ChangeSet {
	inv := make([]Edit, 0, len(cs.edits))
	delta := 0
	for _, e := range cs.edits {
		start := e.From + delta
		inv = append(inv, Edit{
			From:   start,
			To:     start + len(e.Insert),
			Insert: old.Slice(e.From, e.To),
		})
		delta += e.Delta()
	}
	return ChangeSet{edits: inv}
}
