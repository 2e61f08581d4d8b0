package decoration

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/dshills/marginalia/internal/annotation"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
)

// Options are the builder's rendering settings.
type Options struct {
	// Numbering renders running heading numbers and computed ordered list
	// numbers. It forces every rebuild to walk from the document start.
	Numbering bool
	// HeadingStart is the first heading level that gets a number.
	HeadingStart int
	// BulletIndent and OrderedIndent are the per-level indentation widths.
	BulletIndent  int
	OrderedIndent int
}

// DefaultOptions returns numbering off, headings numbered from level 1,
// and indent widths of 2 and 3.
func DefaultOptions() Options {
	return Options{HeadingStart: 1, BulletIndent: 2, OrderedIndent: 3}
}

// Hooks are caller-supplied render callbacks. Each is optional; a panic or
// error from a hook leaves its node undecorated.
type Hooks struct {
	LinkButton func(Link) (any, error)
	Tooltip    func(annotationID string) any
}

// Input is everything a rebuild reads.
type Input struct {
	Doc  text.Doc
	Tree *tree.Tree
	// Windows are the visible ranges. Empty means the whole document.
	Windows     []text.Range
	Focused     bool
	Head        int
	ReadOnly    bool
	Annotations []annotation.Span
}

// Output holds the two descriptor sets of one rebuild.
type Output struct {
	Atomic   Set
	Ordinary Set
}

// Builder produces decorations from a syntax tree.
type Builder struct {
	opts   Options
	hooks  Hooks
	images *ImageCache
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithOptions replaces the rendering options.
func WithOptions(o Options) Option {
	return func(b *Builder) {
		b.opts = o
	}
}

// WithHooks sets the render callbacks.
func WithHooks(h Hooks) Option {
	return func(b *Builder) {
		b.hooks = h
	}
}

// WithImageCache sets the cache images are recorded in.
func WithImageCache(c *ImageCache) Option {
	return func(b *Builder) {
		if c != nil {
			b.images = c
		}
	}
}

// WithLogger sets the builder's logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		opts:   DefaultOptions(),
		images: NewImageCache(0),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.opts.BulletIndent <= 0 {
		b.opts.BulletIndent = 2
	}
	if b.opts.OrderedIndent <= 0 {
		b.opts.OrderedIndent = 3
	}
	if b.opts.HeadingStart < 1 || b.opts.HeadingStart > 6 {
		b.opts.HeadingStart = 1
	}
	return b
}

// Options returns the builder's rendering options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build walks in.Tree and returns the decorations for in.Windows.
func (b *Builder) Build(in Input) Output {
	w := &walk{
		b:       b,
		in:      in,
		windows: normalizeWindows(in.Windows, in.Doc.Len()),
	}

	if b.opts.Numbering {
		// Numbers depend on every heading and item before them.
		w.headings = newHeadingStack(b.opts.HeadingStart)
		end := w.windows[len(w.windows)-1].To
		in.Tree.Iterate(0, end, w.enter, w.leave)
	} else {
		if len(w.windows) > 1 {
			w.seen = make(map[string]bool)
		}
		for _, win := range w.windows {
			w.headings = newHeadingStack(b.opts.HeadingStart)
			w.lists = listStack{}
			in.Tree.Iterate(win.From, win.To, w.enter, w.leave)
		}
	}
	w.annotations()

	return Output{Atomic: NewSet(w.atomic...), Ordinary: NewSet(w.ordinary...)}
}

func normalizeWindows(windows []text.Range, docLen int) []text.Range {
	if len(windows) == 0 {
		return []text.Range{{From: 0, To: docLen}}
	}
	ws := make([]text.Range, 0, len(windows))
	for _, r := range windows {
		ws = append(ws, text.NewRange(r.From, r.To).Clamp(docLen))
	}
	slices.SortFunc(ws, func(a, b text.Range) int { return a.From - b.From })

	out := ws[:1]
	for _, r := range ws[1:] {
		last := &out[len(out)-1]
		if r.From <= last.To {
			last.To = max(last.To, r.To)
			continue
		}
		out = append(out, r)
	}
	return out
}

type walk struct {
	b        *Builder
	in       Input
	windows  []text.Range
	headings *headingStack
	lists    listStack
	atomic   []*Descriptor
	ordinary []*Descriptor
	seen     map[string]bool // dedupes across windows
}

func (w *walk) visible(from, to int) bool {
	for _, win := range w.windows {
		if from <= win.To && to >= win.From {
			return true
		}
	}
	return false
}

// editing is the being-edited predicate: raw markup shows while the
// focused cursor is inside [from, to].
func (w *walk) editing(from, to int) bool {
	return w.in.Focused && from <= w.in.Head && w.in.Head <= to
}

// add keeps d when it is visible. Line descriptors are checked by line
// before they get here.
func (w *walk) add(d *Descriptor) {
	if d.Kind != KindLine && !w.visible(d.From, d.To) {
		return
	}
	if w.seen != nil {
		key := fmt.Sprintf("%d:%d:%d:%T:%v", d.From, d.To, d.Kind, d.Payload, d.Payload)
		if w.seen[key] {
			return
		}
		w.seen[key] = true
	}
	if d.Atomic {
		w.atomic = append(w.atomic, d)
	} else {
		w.ordinary = append(w.ordinary, d)
	}
}

func (w *walk) line(pos int, style LineStyle) {
	l := w.in.Doc.LineAt(pos)
	if !w.visible(l.From, l.To) {
		return
	}
	w.add(&Descriptor{From: l.From, To: l.From, Kind: KindLine, Payload: style})
}

func (w *walk) mark(from, to int, payload any) {
	if from >= to {
		return
	}
	w.add(&Descriptor{From: from, To: to, Kind: KindMark, Payload: payload})
}

func (w *walk) replace(from, to int, payload any) {
	w.add(&Descriptor{From: from, To: to, Kind: KindReplace, Payload: payload, Atomic: true})
}

func (w *walk) hide(n tree.Node) {
	w.replace(n.From(), n.To(), Hidden{Node: n.Type().String()})
}

// skipSpace returns the first offset at or after pos, before limit, that is
// not a space.
func (w *walk) skipSpace(pos, limit int) int {
	src := w.in.Doc.String()
	for pos < limit && (src[pos] == ' ' || src[pos] == '\t') {
		pos++
	}
	return pos
}

func (w *walk) enter(n tree.Node) bool {
	switch t := n.Type(); {
	case t.HeadingLevel() > 0:
		w.heading(n)
	case t.IsList():
		w.lists.push(t == tree.OrderedList)
	case t == tree.ListItem:
		w.listItem(n)
	case t == tree.Task:
		w.task(n)
	case t == tree.FencedCode:
		w.codeBlock(n)
		return false
	case t == tree.Blockquote:
		w.blockquote(n)
	case t == tree.HorizontalRule:
		if !w.editing(n.From(), n.To()) {
			w.replace(n.From(), n.To(), Rule{})
		}
		return false
	case t == tree.Emphasis, t == tree.StrongEmphasis, t == tree.Strikethrough:
		w.emphasis(n)
	case t == tree.InlineCode:
		w.inlineCode(n)
		return false
	case t == tree.Link:
		w.link(n)
	case t == tree.Image:
		w.image(n)
		return false
	case t == tree.Element:
		return false
	}
	return true
}

func (w *walk) leave(n tree.Node) {
	if n.Type().IsList() {
		w.lists.pop()
	}
}

func (w *walk) heading(n tree.Node) {
	level := n.Type().HeadingLevel()
	w.line(n.From(), LineStyle{Class: "heading heading-" + strconv.Itoa(level)})

	var number string
	if w.b.opts.Numbering {
		number = w.headings.enter(level)
	}
	mark, ok := n.Child(tree.HeaderMark)
	if !ok || w.editing(n.From(), n.To()) {
		return
	}
	end := w.skipSpace(mark.To(), n.To())
	if number != "" {
		w.replace(mark.From(), end, HeadingNumber{Level: level, Number: number})
		return
	}
	w.replace(mark.From(), end, Hidden{Node: tree.HeaderMark.String()})
}

func (w *walk) listItem(n tree.Node) {
	frame := w.lists.top()
	if frame == nil {
		return
	}
	mark, ok := n.Child(tree.ListMark)
	raw := ""
	literal := 0
	if ok {
		raw = w.in.Doc.Slice(mark.From(), mark.To())
		if frame.ordered {
			literal = literalNumber(raw)
		}
	}
	w.lists.item(literal)

	depth := w.lists.depth()
	width := w.b.opts.BulletIndent
	if frame.ordered {
		width = w.b.opts.OrderedIndent
	}
	padding := (depth + 1) * width

	var nested []text.Range
	for _, c := range n.Children() {
		if c.Type().IsList() {
			// Nested lists own every line they start on.
			from := w.in.Doc.LineAt(c.From()).From
			nested = append(nested, text.Range{From: from, To: c.To()})
		}
	}
	for i, l := range w.in.Doc.LinesIn(n.From(), n.To()) {
		if slices.ContainsFunc(nested, func(r text.Range) bool { return r.Touches(l.From) }) {
			continue
		}
		style := LineStyle{Class: "list-item", PaddingLeft: padding}
		if i == 0 {
			style.TextIndent = -width
		} else {
			style.Class = "list-item-continuation"
		}
		w.line(l.From, style)
	}

	if !ok {
		return
	}
	markerEnd := mark.To()
	if markerEnd < w.in.Doc.Len() && w.in.Doc.HasPrefixAt(markerEnd, " ") {
		markerEnd++
	}
	if w.editing(mark.From(), markerEnd) {
		return
	}

	lm := ListMarker{Ordered: frame.ordered, Depth: depth}
	switch {
	case !frame.ordered:
		lm.Text = bulletGlyph(depth)
	case w.b.opts.Numbering:
		lm.Text = strconv.Itoa(frame.start+frame.counter-1) + "."
	default:
		lm.Text = raw
	}
	w.replace(mark.From(), mark.To(), lm)
}

func (w *walk) task(n tree.Node) {
	marker, ok := n.Child(tree.TaskMarker)
	if !ok || w.editing(marker.From(), marker.To()) {
		return
	}
	state := w.in.Doc.Slice(marker.From()+1, marker.From()+2)
	w.replace(marker.From(), marker.To(), Checkbox{
		Checked:  state == "x" || state == "X",
		Pos:      marker.From(),
		ReadOnly: w.in.ReadOnly,
	})
}

func (w *walk) codeBlock(n tree.Node) {
	lines := w.in.Doc.LinesIn(n.From(), n.To())
	for i, l := range lines {
		class := "code-block"
		if i == 0 {
			class += " code-block-start"
		}
		if i == len(lines)-1 {
			class += " code-block-end"
		}
		w.line(l.From, LineStyle{Class: class})
	}
	if info, ok := n.Child(tree.CodeInfo); ok {
		w.mark(info.From(), info.To(), MarkStyle{Class: "code-info"})
	}
}

func (w *walk) blockquote(n tree.Node) {
	for _, l := range w.in.Doc.LinesIn(n.From(), n.To()) {
		w.line(l.From, LineStyle{Class: "blockquote"})
	}
	for _, m := range n.ChildrenOf(tree.QuoteMark) {
		l := w.in.Doc.LineAt(m.From())
		if w.editing(l.From, l.To) {
			continue
		}
		w.replace(m.From(), w.skipSpace(m.To(), l.To), Hidden{Node: tree.QuoteMark.String()})
	}
}

var emphasisClass = map[tree.NodeType]string{
	tree.Emphasis:       "emphasis",
	tree.StrongEmphasis: "strong",
	tree.Strikethrough:  "strikethrough",
}

func (w *walk) emphasis(n tree.Node) {
	w.mark(n.From(), n.To(), MarkStyle{Class: emphasisClass[n.Type()]})
	if w.editing(n.From(), n.To()) {
		return
	}
	for _, m := range n.ChildrenOf(tree.EmphasisMark) {
		w.hide(m)
	}
}

func (w *walk) inlineCode(n tree.Node) {
	w.mark(n.From(), n.To(), MarkStyle{Class: "inline-code"})
	if w.editing(n.From(), n.To()) {
		return
	}
	for _, m := range n.ChildrenOf(tree.CodeMark) {
		w.hide(m)
	}
}

func (w *walk) link(n tree.Node) {
	marks := n.ChildrenOf(tree.LinkMark)
	if len(marks) < 3 {
		return
	}
	textFrom, textTo := marks[0].To(), marks[1].From()
	payload := Link{Title: w.in.Doc.Slice(textFrom, textTo)}
	if u, ok := n.Child(tree.URL); ok {
		payload.URL = w.in.Doc.Slice(u.From(), u.To())
	}

	editing := w.editing(n.From(), n.To())
	if !editing && w.b.hooks.LinkButton != nil {
		button, err := w.linkButton(payload)
		if err != nil {
			w.b.logger.Warn("link button failed", "url", payload.URL, "from", n.From(), "error", err)
			return
		}
		payload.Button = button
	}

	w.mark(textFrom, textTo, MarkStyle{Class: "link"})
	if editing {
		return
	}
	w.hide(marks[0])
	w.replace(marks[1].From(), n.To(), payload)
}

func (w *walk) linkButton(l Link) (button any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("link button panic: %v", p)
		}
	}()
	return w.b.hooks.LinkButton(l)
}

func (w *walk) image(n tree.Node) {
	if w.editing(n.From(), n.To()) {
		return
	}
	marks := n.ChildrenOf(tree.LinkMark)
	img := Image{}
	if len(marks) >= 2 {
		img.Alt = w.in.Doc.Slice(marks[0].To(), marks[1].From())
	}
	if u, ok := n.Child(tree.URL); ok {
		img.URL = w.in.Doc.Slice(u.From(), u.To())
	}
	if img.URL != "" {
		img.Cached = w.b.images.Seen(img.URL)
		w.b.images.Record(img.URL)
	}
	w.replace(n.From(), n.To(), img)
}

func (w *walk) annotations() {
	for _, sp := range w.in.Annotations {
		if sp.Range.IsEmpty() {
			continue
		}
		m := AnnotationMark{ID: sp.ID}
		if w.b.hooks.Tooltip != nil {
			m.Tooltip = w.tooltip(sp.ID)
		}
		w.mark(sp.Range.From, sp.Range.To, m)
	}
}

func (w *walk) tooltip(id string) (out any) {
	defer func() {
		if p := recover(); p != nil {
			w.b.logger.Warn("tooltip render panicked", "id", id, "panic", fmt.Sprint(p))
			out = nil
		}
	}()
	return w.b.hooks.Tooltip(id)
}
