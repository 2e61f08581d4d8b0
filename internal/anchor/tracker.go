package anchor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/marginalia/internal/text"
)

// Tracker is an in-memory Service that maps every live anchor through each
// change set it is given.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
	newID   func() string
}

type entry struct {
	rng   text.Range
	point bool // created empty on purpose; never dies from collapsing
	dead  bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithIDGenerator overrides the anchor id generator. Defaults to random UUIDs.
func WithIDGenerator(fn func() string) TrackerOption {
	return func(t *Tracker) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		entries: make(map[string]*entry),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create anchors r in doc. The range is clamped to the document.
func (t *Tracker) Create(r text.Range, doc text.Doc) Anchor {
	r = text.NewRange(r.From, r.To).Clamp(doc.Len())

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.newID()
	t.entries[id] = &entry{rng: r, point: r.IsEmpty()}
	return Anchor{ID: id}
}

// Resolve returns the current range of a, clamped to doc. It reports false
// for unknown anchors and for anchors whose content has been deleted.
func (t *Tracker) Resolve(a Anchor, doc text.Doc) (text.Range, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[a.ID]
	if !ok || e.dead {
		return text.Range{}, false
	}
	return e.rng.Clamp(doc.Len()), true
}

// Map moves every live anchor through cs. Non-empty anchors that collapse
// die permanently.
func (t *Tracker) Map(cs text.ChangeSet) {
	if cs.IsEmpty() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.dead {
			continue
		}
		e.rng = cs.MapRange(e.rng)
		if !e.point && e.rng.IsEmpty() {
			e.dead = true
		}
	}
}

// Forget drops an anchor. Subsequent resolves report false.
func (t *Tracker) Forget(a Anchor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, a.ID)
}

// Len returns the number of anchors tracked, dead ones included.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Prune drops dead anchors and returns how many were removed.
func (t *Tracker) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, e := range t.entries {
		if e.dead {
			delete(t.entries, id)
			n++
		}
	}
	return n
}
