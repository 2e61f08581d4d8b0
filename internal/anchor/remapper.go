package anchor

import (
	"fmt"
	"log/slog"

	"github.com/dshills/marginalia/internal/text"
)

// Remapper converts anchors to absolute ranges in the current document
// through a Service it does not trust. It is the only way the rest of the
// engine resolves anchors.
type Remapper struct {
	svc    Service
	logger *slog.Logger
}

// NewRemapper wraps svc. A nil logger discards output.
func NewRemapper(svc Service, logger *slog.Logger) *Remapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Remapper{svc: svc, logger: logger}
}

// Service returns the wrapped service.
func (m *Remapper) Service() Service {
	return m.svc
}

// Create anchors r in doc.
func (m *Remapper) Create(r text.Range, doc text.Doc) (a Anchor, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("anchor service panic: %v", p)
		}
	}()
	return m.svc.Create(r, doc), nil
}

// Resolve returns the range of a in doc. It reports false when the anchor
// is gone, when the service returns a range outside the document, and when
// the service panics.
func (m *Remapper) Resolve(a Anchor, doc text.Doc) (r text.Range, ok bool) {
	if a.IsZero() {
		return text.Range{}, false
	}
	defer func() {
		if p := recover(); p != nil {
			m.logger.Warn("anchor resolve panicked", "anchor", a.ID, "panic", fmt.Sprint(p))
			r, ok = text.Range{}, false
		}
	}()

	r, ok = m.svc.Resolve(a, doc)
	if !ok {
		return text.Range{}, false
	}
	if !r.IsValid(doc.Len()) {
		m.logger.Debug("anchor resolved outside document", "anchor", a.ID, "from", r.From, "to", r.To, "len", doc.Len())
		return text.Range{}, false
	}
	return r, true
}

// Map forwards cs to the service if it follows edits by mapping.
func (m *Remapper) Map(cs text.ChangeSet) {
	if mp, ok := m.svc.(Mapper); ok {
		mp.Map(cs)
	}
}
