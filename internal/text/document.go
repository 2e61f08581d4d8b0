package text

import (
	"sort"
	"strings"
)

// Doc is an immutable snapshot of document text with a line index.
// The zero value is an empty document.
type Doc struct {
	text       string
	lineStarts []int
}

// Line describes one line of a document.
type Line struct {
	Number int    // 0-indexed line number
	From   int    // Offset of the first byte of the line
	To     int    // Offset just past the last byte, excluding the newline
	Text   string // Line content without the newline
}

// NewDoc creates a document snapshot from a string.
func NewDoc(s string) Doc {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Doc{text: s, lineStarts: starts}
}

// String returns the full document text.
func (d Doc) String() string {
	return d.text
}

// Len returns the document length in bytes.
func (d Doc) Len() int {
	return len(d.text)
}

// Slice returns the text in [from, to), clamped to the document.
func (d Doc) Slice(from, to int) string {
	r := Range{From: from, To: to}.Clamp(len(d.text))
	return d.text[r.From:r.To]
}

// SliceRange is Slice for a Range.
func (d Doc) SliceRange(r Range) string {
	return d.Slice(r.From, r.To)
}

// LineCount returns the number of lines. An empty document has one line.
func (d Doc) LineCount() int {
	if d.lineStarts == nil {
		return 1
	}
	return len(d.lineStarts)
}

// Line returns the line with the given 0-indexed number, clamped to the
// valid line range.
func (d Doc) Line(n int) Line {
	if d.lineStarts == nil {
		return Line{}
	}
	if n < 0 {
		n = 0
	}
	if n >= len(d.lineStarts) {
		n = len(d.lineStarts) - 1
	}
	from := d.lineStarts[n]
	to := len(d.text)
	if n+1 < len(d.lineStarts) {
		to = d.lineStarts[n+1] - 1
	}
	return Line{Number: n, From: from, To: to, Text: d.text[from:to]}
}

// LineAt returns the line containing pos. Positions are clamped.
func (d Doc) LineAt(pos int) Line {
	if d.lineStarts == nil {
		return Line{}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.text) {
		pos = len(d.text)
	}
	// Largest line start <= pos.
	n := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > pos
	}) - 1
	return d.Line(n)
}

// LinesIn returns every line intersecting [from, to].
func (d Doc) LinesIn(from, to int) []Line {
	first := d.LineAt(from)
	last := d.LineAt(to)
	lines := make([]Line, 0, last.Number-first.Number+1)
	for n := first.Number; n <= last.Number; n++ {
		lines = append(lines, d.Line(n))
	}
	return lines
}

// Equal reports whether two snapshots hold identical text.
func (d Doc) Equal(other Doc) bool {
	return d.text == other.text
}

// HasPrefixAt reports whether the text at pos starts with prefix.
func (d Doc) HasPrefixAt(pos int, prefix string) bool {
	if pos < 0 || pos > len(d.text) {
		return false
	}
	return strings.HasPrefix(d.text[pos:], prefix)
}
