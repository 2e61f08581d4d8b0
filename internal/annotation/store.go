package annotation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/debounce"
	"github.com/dshills/marginalia/internal/txn"
)

// Store holds the reducer state for one editor and runs the callbacks that
// go with it.
type Store struct {
	mu     sync.Mutex
	remap  *anchor.Remapper
	state  State
	logger *slog.Logger

	onDelete    func(id string)
	onProximity func(SelectionState)

	proximityDelay time.Duration
	debounceOpts   []debounce.Option
	notify         *debounce.Debouncer
	pending        SelectionState
	notified       SelectionState
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnDelete registers the callback fired once per collapsed annotation.
func WithOnDelete(fn func(id string)) Option {
	return func(s *Store) {
		s.onDelete = fn
	}
}

// WithOnProximity registers the callback told about selection state changes.
func WithOnProximity(fn func(SelectionState)) Option {
	return func(s *Store) {
		s.onProximity = fn
	}
}

// WithProximityDebounce coalesces proximity notifications over delay.
// A zero delay notifies synchronously.
func WithProximityDebounce(delay time.Duration, opts ...debounce.Option) Option {
	return func(s *Store) {
		s.proximityDelay = delay
		s.debounceOpts = opts
	}
}

// NewStore creates an empty store resolving anchors through remap.
func NewStore(remap *anchor.Remapper, opts ...Option) *Store {
	s := &Store{
		remap:  remap,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.proximityDelay > 0 {
		s.notify = debounce.New(s.proximityDelay, s.flushProximity, s.debounceOpts...)
	}
	return s
}

// Apply reduces tr into the store and fires callbacks. It returns the new
// state.
func (s *Store) Apply(tr txn.Transaction) State {
	s.mu.Lock()
	res := Reduce(s.state, tr, s.remap)
	s.state = res.State
	onDelete := s.onDelete
	s.mu.Unlock()

	for _, id := range res.Skipped {
		s.logger.Debug("annotation skipped", "id", id)
	}
	for _, id := range res.Deleted {
		s.logger.Debug("annotation deleted", "id", id)
		if onDelete != nil {
			onDelete(id)
		}
	}
	s.proximityChanged(res.State.Selection)
	return res.State
}

func (s *Store) proximityChanged(sel SelectionState) {
	s.mu.Lock()
	if s.onProximity == nil || sel == s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = sel
	s.mu.Unlock()

	if s.notify != nil {
		s.notify.Call()
		return
	}
	s.flushProximity()
}

func (s *Store) flushProximity() {
	s.mu.Lock()
	sel := s.pending
	fn := s.onProximity
	if fn == nil || sel == s.notified {
		s.mu.Unlock()
		return
	}
	s.notified = sel
	s.mu.Unlock()
	fn(sel)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Annotations = append([]Annotation(nil), s.state.Annotations...)
	return st
}

// Annotation returns the annotation with the given id.
func (s *Store) Annotation(id string) (Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Find(id)
}

// Live reports whether id currently resolves to a non-empty range.
func (s *Store) Live(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Live(id)
}

// Spans returns every active annotation range in document order.
func (s *Store) Spans() []Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Spans()
}

// Selection returns the current selection state.
func (s *Store) Selection() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Selection
}

// Close cancels any pending proximity notification.
func (s *Store) Close() {
	if s.notify != nil {
		s.notify.Cancel()
	}
}
