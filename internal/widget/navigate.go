package widget

import (
	"fmt"
	"slices"

	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
)

// Direction is a navigation direction.
type Direction int

const (
	Next Direction = iota
	Prev
)

// ParseDirection parses "next" or "prev".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "next":
		return Next, nil
	case "prev", "previous":
		return Prev, nil
	}
	return Next, fmt.Errorf("unknown direction %q", s)
}

// Navigate returns the start of the nearest element in dir whose tag is in
// tags, relative to the line containing head. An empty tags list matches
// every element. Without a match it returns the document start or end.
func Navigate(doc text.Doc, t *tree.Tree, head int, dir Direction, tags []string) int {
	line := doc.LineAt(head).Number
	target := -1
	for _, n := range t.Find(tree.Element) {
		el, err := Parse(doc.Slice(n.From(), n.To()), n.From())
		if err != nil {
			continue
		}
		if len(tags) > 0 && !slices.Contains(tags, el.Tag) {
			continue
		}
		l := doc.LineAt(el.From).Number
		if dir == Next && l > line {
			return el.From
		}
		if dir == Prev && l < line {
			target = el.From
		}
	}
	if target >= 0 {
		return target
	}
	if dir == Prev {
		return 0
	}
	return doc.Len()
}
