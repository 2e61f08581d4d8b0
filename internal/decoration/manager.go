package decoration

import (
	"sync"
	"time"

	"github.com/dshills/marginalia/internal/debounce"
	"github.com/dshills/marginalia/internal/txn"
)

// ForceUpdate asks the manager to rebuild regardless of what changed.
var ForceUpdate = txn.Define[struct{}]("decoration.forceUpdate")

// Update describes what changed since the last rebuild.
type Update struct {
	DocChanged       bool
	ViewportChanged  bool
	FocusChanged     bool
	SelectionChanged bool
	Forced           bool
	Input            Input
}

// Manager applies the rebuild policy: rebuild on document, viewport, focus
// or forced updates, and on selection moves unless a selection delay is
// set, in which case the move schedules a forced update once the cursor
// settles.
type Manager struct {
	mu      sync.Mutex
	builder *Builder
	last    Output
	built   bool
	settle  *debounce.Debouncer
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerSettings)

type managerSettings struct {
	delay    time.Duration
	onSettle func()
	opts     []debounce.Option
}

// WithSelectionDelay coalesces selection-only rebuilds. After delay without
// further moves, onSettle is called; it is expected to dispatch a
// transaction carrying ForceUpdate.
func WithSelectionDelay(delay time.Duration, onSettle func(), opts ...debounce.Option) ManagerOption {
	return func(s *managerSettings) {
		s.delay = delay
		s.onSettle = onSettle
		s.opts = opts
	}
}

// NewManager creates a manager around b.
func NewManager(b *Builder, opts ...ManagerOption) *Manager {
	var s managerSettings
	for _, opt := range opts {
		opt(&s)
	}
	m := &Manager{builder: b}
	if s.delay > 0 && s.onSettle != nil {
		m.settle = debounce.New(s.delay, s.onSettle, s.opts...)
	}
	return m
}

// Update rebuilds when the policy calls for it. It returns the current
// output and whether a rebuild happened.
func (m *Manager) Update(u Update) (Output, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	full := !m.built || u.DocChanged || u.ViewportChanged || u.FocusChanged || u.Forced
	switch {
	case full:
		if m.settle != nil {
			m.settle.Cancel()
		}
	case u.SelectionChanged && m.settle != nil:
		m.settle.Call()
		return m.last, false
	case !u.SelectionChanged:
		return m.last, false
	}

	m.last = m.builder.Build(u.Input)
	m.built = true
	return m.last, true
}

// Output returns the most recent output.
func (m *Manager) Output() Output {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Pending reports whether a settle rebuild is scheduled.
func (m *Manager) Pending() bool {
	return m.settle != nil && m.settle.IsPending()
}

// Close cancels any scheduled settle rebuild.
func (m *Manager) Close() {
	if m.settle != nil {
		m.settle.Cancel()
	}
}
