package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// ApplyFunc dispatches a spec and returns the inverse effects the resulting
// transaction produced.
type ApplyFunc func(txn.Spec) ([]txn.Effect, error)

// step is one recorded transaction.
type step struct {
	forward []text.Edit
	inverse []text.Edit
	before  txn.Selection
	after   txn.Selection
	effects []txn.Effect
}

type entry struct {
	name      string
	steps     []*step
	timestamp time.Time
}

// Info describes an undo or redo entry.
type Info struct {
	Name      string
	Steps     int
	Timestamp time.Time
}

// History manages undo/redo stacks for one document.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	grouping  bool
	groupName string
	group     []*step

	maxEntries int
	now        func() time.Time
}

// New creates a history holding at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries, now: time.Now}
}

// Record pushes a document-changing transaction with its inverse effects
// and clears the redo stack. Transactions that do not change the text, and
// undo or redo transactions, are ignored.
func (h *History) Record(tr txn.Transaction, inverseEffects []txn.Effect) {
	if !tr.DocChanged() || tr.Event.Is(txn.EventUndo) || tr.Event.Is(txn.EventRedo) {
		return
	}
	s := &step{
		forward: tr.Changes.Edits(),
		inverse: tr.Changes.Invert(tr.StartDoc).Edits(),
		before:  tr.StartSelection,
		after:   tr.Selection,
		effects: inverseEffects,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		h.group = append(h.group, s)
		return
	}
	h.pushLocked(&entry{name: string(tr.Event), steps: []*step{s}})
}

func (h *History) pushLocked(e *entry) {
	e.timestamp = h.now()
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the last entry through apply. Steps are undone newest
// first. If a step fails, the entry stays on the undo stack.
// The lock is released while apply runs.
func (h *History) Undo(apply ApplyFunc) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	for i := len(e.steps) - 1; i >= 0; i-- {
		s := e.steps[i]
		before := s.before
		_, err := apply(txn.Spec{
			Changes:   s.inverse,
			Selection: &before,
			Effects:   s.effects,
			Event:     txn.EventUndo,
		})
		if err != nil {
			h.mu.Lock()
			h.undoStack = append(h.undoStack, e)
			h.mu.Unlock()
			return err
		}
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
	return nil
}

// Redo reapplies the last undone entry through apply. The inverse effects
// each redone step produces replace the ones recorded before.
func (h *History) Redo(apply ApplyFunc) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	for _, s := range e.steps {
		after := s.after
		effects, err := apply(txn.Spec{
			Changes:   s.forward,
			Selection: &after,
			Event:     txn.EventRedo,
		})
		if err != nil {
			h.mu.Lock()
			h.redoStack = append(h.redoStack, e)
			h.mu.Unlock()
			return err
		}
		s.effects = effects
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.group = nil
}

// EndGroup pushes the transactions recorded since BeginGroup as one entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.grouping {
		return
	}
	h.grouping = false
	if len(h.group) > 0 {
		h.pushLocked(&entry{name: h.groupName, steps: h.group})
	}
	h.group = nil
}

// PeekUndo describes the next undo entry.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	e := h.undoStack[len(h.undoStack)-1]
	return Info{Name: e.name, Steps: len(e.steps), Timestamp: e.timestamp}, true
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}
