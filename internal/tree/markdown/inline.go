package markdown

import (
	"strings"

	"github.com/dshills/marginalia/internal/tree"
)

// inline parses inline markup in src[from:to].
func (p *blockParser) inline(from, to int) {
	i := from
	for i < to {
		switch p.src[i] {
		case '\\':
			i += 2
			continue
		case '`':
			if next, ok := p.inlineCode(i, to); ok {
				i = next
				continue
			}
		case '*', '_', '~':
			if next, ok := p.emphasis(i, to); ok {
				i = next
				continue
			}
		case '!':
			if i+1 < to && p.src[i+1] == '[' {
				if next, ok := p.link(i, to, true); ok {
					i = next
					continue
				}
			}
		case '[':
			if next, ok := p.link(i, to, false); ok {
				i = next
				continue
			}
		case '<':
			if end, ok := elementEnd(p.src, i, to); ok {
				p.b.Leaf(tree.Element, i, end)
				i = end
				continue
			}
		}
		i++
	}
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

func (p *blockParser) inlineCode(i, to int) (int, bool) {
	run := runLength(p.src[:to], i, '`')
	fence := p.src[i : i+run]
	j := strings.Index(p.src[i+run:to], fence)
	if j < 0 {
		return 0, false
	}
	closeAt := i + run + j
	p.b.Open(tree.InlineCode, i)
	p.b.Leaf(tree.CodeMark, i, i+run)
	p.b.Leaf(tree.CodeMark, closeAt, closeAt+run)
	p.b.Close(closeAt + run)
	return closeAt + run, true
}

func (p *blockParser) emphasis(i, to int) (int, bool) {
	c := p.src[i]
	run := runLength(p.src[:to], i, c)

	var typ tree.NodeType
	width := 1
	switch {
	case c == '~':
		if run < 2 {
			return 0, false
		}
		typ, width = tree.Strikethrough, 2
	case run >= 2:
		typ, width = tree.StrongEmphasis, 2
	default:
		typ = tree.Emphasis
	}

	open := i + width
	if open >= to || p.src[open] == ' ' {
		return 0, false
	}
	delim := p.src[i:open]
	j := strings.Index(p.src[open:to], delim)
	if j <= 0 || p.src[open+j-1] == ' ' {
		return 0, false
	}
	closeAt := open + j
	if width == 1 && closeAt+1 < to && p.src[closeAt+1] == c {
		// A single delimiter must not close on the start of a run.
		return 0, false
	}

	p.b.Open(typ, i)
	p.b.Leaf(tree.EmphasisMark, i, open)
	p.inline(open, closeAt)
	p.b.Leaf(tree.EmphasisMark, closeAt, closeAt+width)
	p.b.Close(closeAt + width)
	return closeAt + width, true
}

// link parses [text](url) or, when image is set, ![alt](url).
func (p *blockParser) link(i, to int, image bool) (int, bool) {
	textStart := i + 1
	if image {
		textStart = i + 2
	}
	depth := 1
	bracket := -1
	for k := textStart; k < to; k++ {
		switch p.src[k] {
		case '\\':
			k++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				bracket = k
			}
		}
		if bracket >= 0 {
			break
		}
	}
	if bracket < 0 || bracket+1 >= to || p.src[bracket+1] != '(' {
		return 0, false
	}
	paren := strings.IndexByte(p.src[bracket+2:to], ')')
	if paren < 0 {
		return 0, false
	}
	paren += bracket + 2

	urlStart := bracket + 2
	urlEnd := paren
	if sp := strings.IndexByte(p.src[urlStart:paren], ' '); sp >= 0 {
		urlEnd = urlStart + sp
	}

	typ := tree.Link
	if image {
		typ = tree.Image
	}
	p.b.Open(typ, i)
	p.b.Leaf(tree.LinkMark, i, textStart)
	if !image {
		p.inline(textStart, bracket)
	}
	p.b.Leaf(tree.LinkMark, bracket, bracket+2)
	if urlEnd > urlStart {
		p.b.Leaf(tree.URL, urlStart, urlEnd)
	}
	p.b.Leaf(tree.LinkMark, paren, paren+1)
	p.b.Close(paren + 1)
	return paren + 1, true
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
}

// openTagEnd scans an open tag starting at src[start] == '<' and returns the
// tag name and the offset just past its '>'. Quoted strings and braced
// expressions may contain '>'.
func openTagEnd(src string, start, limit int) (name string, end int, selfClosing, ok bool) {
	if start+1 >= limit || src[start] != '<' {
		return "", 0, false, false
	}
	if c := src[start+1]; c < 'A' || c > 'Z' {
		return "", 0, false, false
	}
	k := start + 1
	for k < limit && isTagNameByte(src[k]) {
		k++
	}
	name = src[start+1 : k]

	var quote byte
	braces := 0
	for ; k < limit; k++ {
		c := src[k]
		switch {
		case quote != 0:
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			braces++
		case c == '}':
			if braces > 0 {
				braces--
			}
		case c == '>' && braces == 0:
			return name, k + 1, src[k-1] == '/', true
		}
	}
	return "", 0, false, false
}

// elementEnd returns the end of the element starting at src[start], or false
// when the element is not closed before limit.
func elementEnd(src string, start, limit int) (int, bool) {
	name, k, selfClosing, ok := openTagEnd(src, start, limit)
	if !ok {
		return 0, false
	}
	if selfClosing {
		return k, true
	}

	closeTag := "</" + name
	depth := 1
	for k < limit {
		lt := strings.IndexByte(src[k:limit], '<')
		if lt < 0 {
			return 0, false
		}
		lt += k
		rest := src[lt:limit]
		switch {
		case strings.HasPrefix(rest, closeTag) && tagBoundary(rest, len(closeTag)):
			gt := strings.IndexByte(rest, '>')
			if gt < 0 {
				return 0, false
			}
			depth--
			if depth == 0 {
				return lt + gt + 1, true
			}
			k = lt + gt + 1
		case strings.HasPrefix(rest[1:], name) && tagBoundary(rest, 1+len(name)):
			_, end, sc, ok := openTagEnd(src, lt, limit)
			if !ok {
				return 0, false
			}
			if !sc {
				depth++
			}
			k = end
		default:
			k = lt + 1
		}
	}
	return 0, false
}

func tagBoundary(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case '>', '/', ' ', '\t', '\n':
		return true
	}
	return false
}
