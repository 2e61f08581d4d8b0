package markdown

import (
	"strings"
	"sync"

	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
)

// Parser builds syntax trees from documents. A Parser holds no state
// between calls and is safe for concurrent use.
type Parser struct{}

// New creates a parser.
func New() *Parser {
	return &Parser{}
}

// Parse builds the tree for doc.
func (p *Parser) Parse(doc text.Doc) *tree.Tree {
	bp := &blockParser{
		doc: doc,
		src: doc.String(),
		b:   tree.NewBuilder(doc.Len()),
	}
	bp.parseBlocks(0, doc.LineCount()-1)
	return bp.b.Build()
}

// Provider caches the tree of the most recent document it was asked for.
type Provider struct {
	mu     sync.Mutex
	parser *Parser
	last   text.Doc
	tree   *tree.Tree
}

// NewProvider creates a caching provider backed by a new Parser.
func NewProvider() *Provider {
	return &Provider{parser: New()}
}

// Tree returns the syntax tree for doc, reparsing only when the text differs
// from the previous call.
func (p *Provider) Tree(doc text.Doc) *tree.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tree != nil && p.last.Equal(doc) {
		return p.tree
	}
	p.tree = p.parser.Parse(doc)
	p.last = doc
	return p.tree
}

type blockParser struct {
	doc text.Doc
	src string
	b   *tree.Builder
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// parseBlocks parses the lines first..last inclusive.
func (p *blockParser) parseBlocks(first, last int) {
	n := first
	for n <= last {
		line := p.doc.Line(n)
		ind := leadingSpaces(line.Text)
		rest := line.Text[ind:]

		switch {
		case isBlank(rest):
			n++
		case fenceRun(rest) > 0:
			n = p.fencedCode(n, last, ind)
		case headingLevel(rest) > 0:
			p.heading(line, ind)
			n++
		case isRule(rest):
			p.b.Leaf(tree.HorizontalRule, line.From+ind, line.To)
			n++
		case rest[0] == '>':
			n = p.blockquote(n, last)
		default:
			if ordered, _, ok := listMarker(rest); ok {
				n = p.list(n, last, ind, ordered)
				continue
			}
			if element := p.elementBlock(n, last, ind); element > n {
				n = element
				continue
			}
			n = p.paragraph(n, last)
		}
	}
}

// fenceRun returns the length of an opening code fence at the start of s.
func fenceRun(s string) int {
	if len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return 0
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 {
		return 0
	}
	if c == '`' && strings.ContainsRune(s[n:], '`') {
		return 0
	}
	return n
}

func headingLevel(s string) int {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(s) && s[n] != ' ' && s[n] != '\t' {
		return 0
	}
	return n
}

func isRule(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case c:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// listMarker recognises "- ", "* ", "+ ", "1. " and "1) " at the start of s.
// mlen is the marker length without the following space.
func listMarker(s string) (ordered bool, mlen int, ok bool) {
	if s == "" {
		return false, 0, false
	}
	followedBySpace := func(i int) bool {
		return i == len(s) || s[i] == ' ' || s[i] == '\t'
	}
	switch s[0] {
	case '-', '*', '+':
		if followedBySpace(1) {
			return false, 1, true
		}
		return false, 0, false
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || (s[i] != '.' && s[i] != ')') {
		return false, 0, false
	}
	if !followedBySpace(i + 1) {
		return false, 0, false
	}
	return true, i + 1, true
}

func (p *blockParser) heading(line text.Line, ind int) {
	level := headingLevel(line.Text[ind:])
	start := line.From + ind
	p.b.Open(tree.HeadingType(level), start)
	p.b.Leaf(tree.HeaderMark, start, start+level)
	content := start + level
	for content < line.To && (p.src[content] == ' ' || p.src[content] == '\t') {
		content++
	}
	p.inline(content, line.To)
	p.b.Close(line.To)
}

func (p *blockParser) fencedCode(n, last, ind int) int {
	line := p.doc.Line(n)
	start := line.From + ind
	rest := line.Text[ind:]
	run := fenceRun(rest)
	fence := rest[:run]

	p.b.Open(tree.FencedCode, start)
	p.b.Leaf(tree.CodeMark, start, start+run)
	if info := strings.TrimSpace(rest[run:]); info != "" {
		infoStart := start + run + strings.Index(rest[run:], info)
		p.b.Leaf(tree.CodeInfo, infoStart, infoStart+len(info))
	}

	closing := -1
	for m := n + 1; m <= last; m++ {
		l := p.doc.Line(m)
		t := strings.TrimSpace(l.Text)
		if strings.HasPrefix(t, fence) && strings.Trim(t, fence[:1]) == "" {
			closing = m
			break
		}
	}

	bodyLast := last
	if closing >= 0 {
		bodyLast = closing - 1
	}
	if bodyLast > n {
		p.b.Leaf(tree.CodeText, p.doc.Line(n+1).From, p.doc.Line(bodyLast).To)
	}
	if closing < 0 {
		p.b.Close(p.doc.Line(last).To)
		return last + 1
	}

	cl := p.doc.Line(closing)
	cstart := cl.From + leadingSpaces(cl.Text)
	cend := cstart
	for cend < cl.To && p.src[cend] == fence[0] {
		cend++
	}
	p.b.Leaf(tree.CodeMark, cstart, cend)
	p.b.Close(cl.To)
	return closing + 1
}

func (p *blockParser) blockquote(n, last int) int {
	first := p.doc.Line(n)
	p.b.Open(tree.Blockquote, first.From+leadingSpaces(first.Text))

	m := n
	end := first.To
	for m <= last {
		l := p.doc.Line(m)
		ind := leadingSpaces(l.Text)
		if ind >= len(l.Text) || l.Text[ind] != '>' {
			break
		}
		q := l.From + ind
		p.b.Leaf(tree.QuoteMark, q, q+1)
		content := q + 1
		if content < l.To && p.src[content] == ' ' {
			content++
		}
		if content < l.To && !isBlank(p.src[content:l.To]) {
			p.b.Open(tree.Paragraph, content)
			p.inline(content, l.To)
			p.b.Close(l.To)
		}
		end = l.To
		m++
	}
	p.b.Close(end)
	return m
}

// nextNonBlank returns the first non-blank line in from..last, or -1.
func (p *blockParser) nextNonBlank(from, last int) int {
	for k := from; k <= last; k++ {
		if !isBlank(p.doc.Line(k).Text) {
			return k
		}
	}
	return -1
}

func (p *blockParser) list(n, last, ind int, ordered bool) int {
	typ := tree.BulletList
	if ordered {
		typ = tree.OrderedList
	}
	first := p.doc.Line(n)
	p.b.Open(typ, first.From+ind)

	m := n
	end := first.To
	for m <= last {
		l := p.doc.Line(m)
		if isBlank(l.Text) {
			k := p.nextNonBlank(m+1, last)
			if k < 0 {
				break
			}
			kl := p.doc.Line(k)
			kind := leadingSpaces(kl.Text)
			if o, _, ok := listMarker(kl.Text[kind:]); !ok || kind != ind || o != ordered {
				break
			}
			m = k
			continue
		}
		li := leadingSpaces(l.Text)
		o, mlen, ok := listMarker(l.Text[li:])
		if !ok || li != ind || o != ordered {
			break
		}
		m, end = p.listItem(m, last, ind, mlen)
	}
	p.b.Close(end)
	return m
}

func (p *blockParser) listItem(n, last, ind, mlen int) (next, end int) {
	line := p.doc.Line(n)
	mstart := line.From + ind
	p.b.Open(tree.ListItem, mstart)
	p.b.Leaf(tree.ListMark, mstart, mstart+mlen)

	lastLine := n
	for m := n + 1; m <= last; {
		l := p.doc.Line(m)
		if isBlank(l.Text) {
			k := p.nextNonBlank(m+1, last)
			if k < 0 || leadingSpaces(p.doc.Line(k).Text) <= ind {
				break
			}
			m = k
			continue
		}
		if leadingSpaces(l.Text) <= ind {
			break
		}
		lastLine = m
		m++
	}

	content := mstart + mlen
	for content < line.To && (p.src[content] == ' ' || p.src[content] == '\t') {
		content++
	}
	if content < line.To {
		body := p.src[content:line.To]
		if isTaskMarker(body) {
			p.b.Open(tree.Task, content)
			p.b.Leaf(tree.TaskMarker, content, content+3)
			p.inline(content+3, line.To)
			p.b.Close(line.To)
		} else {
			p.b.Open(tree.Paragraph, content)
			p.inline(content, line.To)
			p.b.Close(line.To)
		}
	}
	if lastLine > n {
		p.parseBlocks(n+1, lastLine)
	}

	end = p.doc.Line(lastLine).To
	p.b.Close(end)
	return lastLine + 1, end
}

func isTaskMarker(s string) bool {
	if len(s) < 3 || s[0] != '[' || s[2] != ']' {
		return false
	}
	if s[1] != ' ' && s[1] != 'x' && s[1] != 'X' {
		return false
	}
	return len(s) == 3 || s[3] == ' ' || s[3] == '\t'
}

// startsBlock reports whether a line would interrupt a paragraph.
func startsBlock(s string) bool {
	ind := leadingSpaces(s)
	rest := s[ind:]
	if rest == "" {
		return true
	}
	if fenceRun(rest) > 0 || headingLevel(rest) > 0 || isRule(rest) || rest[0] == '>' {
		return true
	}
	_, _, ok := listMarker(rest)
	return ok
}

func (p *blockParser) paragraph(n, last int) int {
	first := p.doc.Line(n)
	start := first.From + leadingSpaces(first.Text)
	m := n + 1
	for m <= last && !startsBlock(p.doc.Line(m).Text) {
		m++
	}
	end := p.doc.Line(m - 1).To
	p.b.Open(tree.Paragraph, start)
	p.inline(start, end)
	p.b.Close(end)
	return m
}

// elementBlock parses an element that starts a line and may span several
// lines. It returns n when no complete element starts here.
func (p *blockParser) elementBlock(n, last, ind int) int {
	line := p.doc.Line(n)
	start := line.From + ind
	end, ok := elementEnd(p.src, start, p.doc.Line(last).To)
	if !ok {
		return n
	}
	endLine := p.doc.LineAt(end)
	if end < endLine.To && !isBlank(p.src[end:endLine.To]) {
		// Trailing text after the element: let the paragraph parser
		// handle the whole thing inline.
		return n
	}
	p.b.Leaf(tree.Element, start, end)
	return endLine.Number + 1
}
