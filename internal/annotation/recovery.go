package annotation

import (
	"log/slog"
	"sync"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
)

// ClipboardEntry is an annotation captured by a cut or copy, relative to
// the start of the copied text.
type ClipboardEntry struct {
	ID           string `json:"id"`
	RelativeFrom int    `json:"relativeFrom"`
	RelativeTo   int    `json:"relativeTo"`
}

// ClipboardPayload is the tracked result of the most recent cut or copy.
type ClipboardPayload struct {
	SourceText string           `json:"sourceText"`
	Entries    []ClipboardEntry `json:"entries"`
}

// DeleteMarker records an annotation removed by a transaction, in the
// coordinates of the document before that transaction.
type DeleteMarker struct {
	ID   string `json:"id"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// RestoreMarkers carries delete markers on a transaction's inverse effects.
// When the inverse is applied as an undo, the markers' annotations are
// restored.
var RestoreMarkers = txn.Define[[]DeleteMarker]("annotation.restoreMarkers")

// Recovery tracks annotations through destructive edits. One Recovery
// belongs to one editor; it holds at most one clipboard payload.
type Recovery struct {
	mu      sync.Mutex
	remap   *anchor.Remapper
	payload *ClipboardPayload
	logger  *slog.Logger
}

// NewRecovery creates a recovery tracker creating anchors through remap.
func NewRecovery(remap *anchor.Remapper, logger *slog.Logger) *Recovery {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recovery{remap: remap, logger: logger}
}

// Capture records the annotations inside the selection of a cut or copy.
// prev must be the state before tr. Any previous payload is replaced; other
// events are ignored.
func (r *Recovery) Capture(prev State, tr txn.Transaction) {
	if !tr.Event.Is(txn.EventCut) && !tr.Event.Is(txn.EventCopy) {
		return
	}
	sel := tr.StartSelection.Range()
	if sel.IsEmpty() {
		return
	}

	p := &ClipboardPayload{SourceText: tr.StartDoc.SliceRange(sel)}
	for _, a := range prev.Annotations {
		if !a.live() || !sel.ContainsRange(a.Range) {
			continue
		}
		p.Entries = append(p.Entries, ClipboardEntry{
			ID:           a.ID,
			RelativeFrom: a.Range.From - sel.From,
			RelativeTo:   a.Range.To - sel.From,
		})
	}

	r.mu.Lock()
	r.payload = p
	r.mu.Unlock()
	r.logger.Debug("clipboard captured", "event", string(tr.Event), "entries", len(p.Entries))
}

// Payload returns the live clipboard payload.
func (r *Recovery) Payload() (ClipboardPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.payload == nil {
		return ClipboardPayload{}, false
	}
	return *r.payload, true
}

// Markers returns a delete marker for every live annotation of prev lying
// entirely inside a span deleted by tr.
func (r *Recovery) Markers(prev State, tr txn.Transaction) []DeleteMarker {
	deleted := tr.Changes.Deleted()
	if len(deleted) == 0 {
		return nil
	}
	var out []DeleteMarker
	for _, a := range prev.Annotations {
		if !a.live() {
			continue
		}
		for _, d := range deleted {
			if d.ContainsRange(a.Range) {
				out = append(out, DeleteMarker{ID: a.ID, From: a.Range.From, To: a.Range.To})
				break
			}
		}
	}
	return out
}

// Restorations returns the Restore entries tr calls for: a paste of the
// tracked clipboard text, or an undo carrying delete markers. Ids still live
// in prev are skipped so no id is ever registered twice. Anchors are created
// in tr.Doc, so the caller must have mapped the anchor service through tr.
func (r *Recovery) Restorations(prev State, tr txn.Transaction) []Entry {
	var out []Entry
	if tr.Event.Is(txn.EventPaste) {
		out = append(out, r.pasted(prev, tr)...)
	}
	if tr.Event.Is(txn.EventUndo) {
		for _, markers := range RestoreMarkers.All(tr.Effects) {
			for _, m := range markers {
				out = r.restore(out, prev, m.ID, text.Range{From: m.From, To: m.To}, tr.Doc)
			}
		}
	}
	return out
}

func (r *Recovery) pasted(prev State, tr txn.Transaction) []Entry {
	r.mu.Lock()
	p := r.payload
	r.mu.Unlock()
	if p == nil {
		return nil
	}

	at := -1
	for _, ins := range tr.Changes.Inserted() {
		if ins.Text == p.SourceText {
			at = ins.At
			break
		}
	}
	if at < 0 {
		return nil
	}

	var out []Entry
	for _, e := range p.Entries {
		out = r.restore(out, prev, e.ID, text.Range{From: at + e.RelativeFrom, To: at + e.RelativeTo}, tr.Doc)
	}

	r.mu.Lock()
	if r.payload == p {
		r.payload = nil
	}
	r.mu.Unlock()
	return out
}

func (r *Recovery) restore(out []Entry, prev State, id string, rng text.Range, doc text.Doc) []Entry {
	if prev.Live(id) {
		r.logger.Debug("restore skipped, id is live", "id", id)
		return out
	}
	if !rng.IsValid(doc.Len()) {
		r.logger.Debug("restore range outside document", "id", id, "from", rng.From, "to", rng.To)
		return out
	}
	a, err := r.remap.Create(rng, doc)
	if err != nil {
		r.logger.Warn("restore anchor failed", "id", id, "error", err)
		return out
	}
	return append(out, Entry{ID: id, Anchor: a})
}
