package decoration

import (
	"strconv"
	"strings"
)

// headingStack holds one counter per heading level.
type headingStack struct {
	counters []int
	start    int
}

func newHeadingStack(start int) *headingStack {
	if start < 1 || start > 6 {
		start = 1
	}
	return &headingStack{start: start}
}

// enter records a heading of the given level and returns its rendered
// number, or "" for levels above the starting level.
func (h *headingStack) enter(level int) string {
	for len(h.counters) < level {
		h.counters = append(h.counters, 0)
	}
	h.counters = h.counters[:level]
	h.counters[level-1]++

	if level < h.start {
		return ""
	}
	parts := make([]string, 0, level-h.start+1)
	for _, c := range h.counters[h.start-1 : level] {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, ".")
}

type listFrame struct {
	ordered bool
	counter int
	start   int // literal number of the first item; -1 until seen
}

// listStack tracks open lists while walking.
type listStack struct {
	frames []listFrame
}

func (l *listStack) push(ordered bool) {
	l.frames = append(l.frames, listFrame{ordered: ordered, start: -1})
}

func (l *listStack) pop() {
	if len(l.frames) > 0 {
		l.frames = l.frames[:len(l.frames)-1]
	}
}

// depth is the nesting level of the innermost list, starting at 0.
func (l *listStack) depth() int {
	return len(l.frames) - 1
}

func (l *listStack) top() *listFrame {
	if len(l.frames) == 0 {
		return nil
	}
	return &l.frames[len(l.frames)-1]
}

// item advances the innermost list by one item. literal is the number the
// item's marker carries, ignored for bullets.
func (l *listStack) item(literal int) *listFrame {
	f := l.top()
	if f == nil {
		return nil
	}
	if f.start < 0 {
		f.start = literal
	}
	f.counter++
	return f
}

var bulletGlyphs = [...]string{"•", "◦", "▪"}

func bulletGlyph(depth int) string {
	if depth < 0 {
		depth = 0
	}
	return bulletGlyphs[depth%len(bulletGlyphs)]
}

// literalNumber parses the digits of an ordered marker such as "3." or "12)".
func literalNumber(marker string) int {
	n, err := strconv.Atoi(strings.TrimRight(marker, ".)"))
	if err != nil {
		return 1
	}
	return n
}
