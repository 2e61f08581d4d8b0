package widget

import (
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/marginalia/internal/decoration"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
	"github.com/dshills/marginalia/internal/txn"
)

// Rendered is the payload of a factory widget.
type Rendered struct {
	ID    string `json:"id" yaml:"id"`
	Tag   string `json:"tag" yaml:"tag"`
	Block bool   `json:"block,omitempty" yaml:"block,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Placeholder is the payload of a component widget. The host mounts the
// component into it when it receives the matching Mount event.
type Placeholder struct {
	ID        string `json:"id" yaml:"id"`
	Tag       string `json:"tag" yaml:"tag"`
	Component string `json:"component" yaml:"component"`
	Block     bool   `json:"block,omitempty" yaml:"block,omitempty"`
}

// EventKind classifies a lifecycle event.
type EventKind int

const (
	Mount EventKind = iota
	Unmount
	Rerender
)

var eventKindNames = [...]string{"mount", "unmount", "rerender"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a component lifecycle notification.
type Event struct {
	Kind      EventKind `json:"kind" yaml:"kind"`
	ID        string    `json:"id" yaml:"id"`
	Tag       string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Component string    `json:"component,omitempty" yaml:"component,omitempty"`
	Props     Props     `json:"props,omitempty" yaml:"props,omitempty"`
}

// Record describes one rendered widget.
type Record struct {
	ID        string         `json:"id" yaml:"id"`
	Tag       string         `json:"tag" yaml:"tag"`
	Attrs     map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children  string         `json:"children,omitempty" yaml:"children,omitempty"`
	Component string         `json:"component,omitempty" yaml:"component,omitempty"`
	From      int            `json:"from" yaml:"from"`
	To        int            `json:"to" yaml:"to"`

	def       Definition
	generated bool
	desc      *decoration.Descriptor
}

// Mounted reports whether the widget is a mounted component.
func (r *Record) Mounted() bool {
	return r.Component != ""
}

// Result is the outcome of a rebuild.
type Result struct {
	Set         decoration.Set
	Events      []Event
	Incremental bool
}

// Builder maintains the widget decorations of one document.
type Builder struct {
	mu       sync.Mutex
	registry *Registry
	logger   *slog.Logger
	newID    func() string

	built         bool
	records       []*Record
	set           decoration.Set
	lastProcessed int
	state         map[string]Props
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for skipped elements and render failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithIDGenerator replaces uuid generation for elements without an id.
func WithIDGenerator(f func() string) Option {
	return func(b *Builder) {
		if f != nil {
			b.newID = f
		}
	}
}

// NewBuilder creates a builder over a registry.
func NewBuilder(reg *Registry, opts ...Option) *Builder {
	if reg == nil {
		reg = NewRegistry()
	}
	b := &Builder{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		newID:    uuid.NewString,
		state:    make(map[string]Props),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rebuild discards everything and renders every element of the document.
func (b *Builder) Rebuild(doc text.Doc, t *tree.Tree) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.full(doc, t, nil)
}

// Update applies the incremental policy for a transaction. Transactions
// that do not change the text leave the set untouched. An edit strictly
// after the last processed element only renders the appended region.
func (b *Builder) Update(tr txn.Transaction, t *tree.Tree) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.built {
		return b.full(tr.Doc, t, nil)
	}
	if !tr.DocChanged() {
		return Result{Set: b.set}
	}
	if tr.Changes.TouchedFrom() > b.lastProcessed {
		return b.appendOnly(tr.Doc, t)
	}
	return b.full(tr.Doc, t, &tr.Changes)
}

func (b *Builder) full(doc text.Doc, t *tree.Tree, changes *text.ChangeSet) Result {
	type key struct {
		from int
		tag  string
	}
	reuse := make(map[key]string)
	prev := make(map[string]*Record, len(b.records))
	for _, rec := range b.records {
		prev[rec.ID] = rec
		if rec.generated && changes != nil {
			reuse[key{changes.MapPos(rec.From, 1), rec.Tag}] = rec.ID
		}
	}

	taken := make(map[string]bool)
	b.lastProcessed = 0
	records := b.scan(doc, t, 0, taken, func(el *Element) string {
		return reuse[key{el.From, el.Tag}]
	})

	var events []Event
	next := make(map[string]bool, len(records))
	for _, rec := range records {
		next[rec.ID] = true
		if !rec.Mounted() {
			continue
		}
		if old, ok := prev[rec.ID]; ok && old.Mounted() {
			events = append(events, b.event(Rerender, rec))
		} else {
			events = append(events, b.event(Mount, rec))
		}
	}
	for _, old := range b.records {
		if old.Mounted() && !next[old.ID] {
			events = append(events, Event{Kind: Unmount, ID: old.ID, Tag: old.Tag})
		}
	}

	descs := make([]*decoration.Descriptor, 0, len(records))
	for _, rec := range records {
		descs = append(descs, rec.desc)
	}
	b.records = records
	b.set = decoration.NewSet(descs...)
	b.built = true
	return Result{Set: b.set, Events: events}
}

func (b *Builder) appendOnly(doc text.Doc, t *tree.Tree) Result {
	taken := make(map[string]bool, len(b.records))
	for _, rec := range b.records {
		taken[rec.ID] = true
	}
	added := b.scan(doc, t, b.lastProcessed, taken, nil)

	var events []Event
	descs := make([]*decoration.Descriptor, 0, len(added))
	for _, rec := range added {
		descs = append(descs, rec.desc)
		if rec.Mounted() {
			events = append(events, b.event(Mount, rec))
		}
	}
	b.records = append(b.records, added...)
	b.set = b.set.Concat(descs...)
	return Result{Set: b.set, Events: events, Incremental: true}
}

// scan renders every element starting at or after from. reuse, if set,
// supplies a previous generated id for an element.
func (b *Builder) scan(doc text.Doc, t *tree.Tree, from int, taken map[string]bool, reuse func(*Element) string) []*Record {
	var out []*Record
	t.Iterate(from, doc.Len(), func(n tree.Node) bool {
		if n.Type() != tree.Element {
			return true
		}
		if n.From() < from {
			return false
		}
		b.lastProcessed = max(b.lastProcessed, n.To())

		el, err := Parse(doc.Slice(n.From(), n.To()), n.From())
		if err != nil {
			b.logger.Debug("skipping element", "from", n.From(), "to", n.To(), "error", err)
			return false
		}
		def, ok, err := b.registry.Lookup(el)
		if err != nil {
			b.logger.Warn("widget predicate failed", "tag", el.Tag, "from", el.From, "error", err)
			return false
		}
		if !ok {
			b.logger.Debug("no widget definition", "tag", el.Tag, "from", el.From)
			return false
		}

		rec := &Record{
			Tag:       el.Tag,
			Attrs:     el.Attrs,
			Children:  el.Children,
			Component: def.Component,
			From:      el.From,
			To:        el.To,
			def:       def,
		}
		switch id := el.ID(); {
		case id != "" && !taken[id]:
			rec.ID = id
		case reuse != nil && reuse(el) != "" && !taken[reuse(el)]:
			rec.ID = reuse(el)
			rec.generated = true
		default:
			rec.ID = b.newID()
			rec.generated = true
		}

		if err := b.render(rec); err != nil {
			b.logger.Warn("widget render failed", "tag", rec.Tag, "id", rec.ID, "from", rec.From, "error", err)
			return false
		}
		taken[rec.ID] = true
		out = append(out, rec)
		return false
	}, nil)
	return out
}

// render sets rec.desc to a fresh descriptor.
func (b *Builder) render(rec *Record) error {
	d := &decoration.Descriptor{From: rec.From, To: rec.To, Kind: decoration.KindReplace, Atomic: true}
	if rec.Mounted() {
		d.Payload = Placeholder{ID: rec.ID, Tag: rec.Tag, Component: rec.Component, Block: rec.def.Block}
		rec.desc = d
		return nil
	}
	v, err := render(rec.def, b.props(rec))
	if err != nil {
		return err
	}
	d.Payload = Rendered{ID: rec.ID, Tag: rec.Tag, Block: rec.def.Block, Value: v}
	rec.desc = d
	return nil
}

func (b *Builder) props(rec *Record) Props {
	p := make(Props, len(rec.Attrs)+2)
	maps.Copy(p, rec.Attrs)
	p["id"] = rec.ID
	p["children"] = rec.Children
	maps.Copy(p, b.state[rec.ID])
	return p
}

func (b *Builder) event(kind EventKind, rec *Record) Event {
	return Event{Kind: kind, ID: rec.ID, Tag: rec.Tag, Component: rec.Component, Props: b.props(rec)}
}

// SetState merges state into the widget's buffered state. State for an id
// that is not rendered yet is kept until it is. A rendered widget is
// re-rendered: factories get a fresh descriptor, components a Rerender
// event.
func (b *Builder) SetState(id string, state Props) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := b.state[id]
	if buf == nil {
		buf = make(Props, len(state))
		b.state[id] = buf
	}
	maps.Copy(buf, state)

	for _, rec := range b.records {
		if rec.ID != id {
			continue
		}
		if rec.Mounted() {
			return Result{Set: b.set, Events: []Event{b.event(Rerender, rec)}}
		}
		old := rec.desc
		if err := b.render(rec); err != nil {
			b.logger.Warn("widget render failed", "tag", rec.Tag, "id", rec.ID, "error", err)
			rec.desc = old
			return Result{Set: b.set}
		}
		descs := make([]*decoration.Descriptor, len(b.records))
		for i, r := range b.records {
			descs[i] = r.desc
		}
		b.set = decoration.NewSet(descs...)
		return Result{Set: b.set}
	}
	return Result{Set: b.set}
}

// Set returns the current widget decorations.
func (b *Builder) Set() decoration.Set {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.set
}

// LastProcessed returns the end of the last element processed.
func (b *Builder) LastProcessed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastProcessed
}

// Records returns the rendered widgets in document order.
func (b *Builder) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.records))
	for i, rec := range b.records {
		out[i] = *rec
	}
	return out
}

// Teardown unmounts every component and forgets all widgets. Buffered
// state is kept.
func (b *Builder) Teardown() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var events []Event
	for _, rec := range b.records {
		if rec.Mounted() {
			events = append(events, Event{Kind: Unmount, ID: rec.ID, Tag: rec.Tag})
		}
	}
	b.records = nil
	b.set = decoration.Set{}
	b.lastProcessed = 0
	b.built = false
	return events
}
