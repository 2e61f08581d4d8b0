package text

import "fmt"

// Range is a span of the document. From is inclusive, To is exclusive.
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// NewRange creates a range, swapping the bounds if they are reversed.
func NewRange(from, to int) Range {
	if from > to {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.From, r.To)
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.To - r.From
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.From >= r.To
}

// IsValid returns true if 0 <= From <= To <= docLen.
func (r Range) IsValid(docLen int) bool {
	return r.From >= 0 && r.From <= r.To && r.To <= docLen
}

// Touches returns true if pos lies within [From, To], both edges included.
// This is the containment rule used for cursor proximity.
func (r Range) Touches(pos int) bool {
	return pos >= r.From && pos <= r.To
}

// Contains returns true if pos lies within [From, To).
func (r Range) Contains(pos int) bool {
	return pos >= r.From && pos < r.To
}

// ContainsRange returns true if other lies entirely within this range.
func (r Range) ContainsRange(other Range) bool {
	return other.From >= r.From && other.To <= r.To
}

// Overlaps returns true if the ranges share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.From < other.To && other.From < r.To
}

// Intersects is like Overlaps but also reports ranges that only touch at an
// edge, and empty ranges lying inside or on the edge of r.
func (r Range) Intersects(other Range) bool {
	return r.From <= other.To && other.From <= r.To
}

// Clamp limits the range to [0, docLen].
func (r Range) Clamp(docLen int) Range {
	if r.From < 0 {
		r.From = 0
	}
	if r.To > docLen {
		r.To = docLen
	}
	if r.From > r.To {
		r.From = r.To
	}
	return r
}

// Shift returns the range moved by delta.
func (r Range) Shift(delta int) Range {
	return Range{From: r.From + delta, To: r.To + delta}
}

// Distance returns the distance from pos to the nearest edge of the range.
func (r Range) Distance(pos int) int {
	df := pos - r.From
	if df < 0 {
		df = -df
	}
	dt := pos - r.To
	if dt < 0 {
		dt = -dt
	}
	if dt < df {
		return dt
	}
	return df
}
