package txn

import (
	"fmt"
	"strings"

	"github.com/dshills/marginalia/internal/text"
)

// Event tags the user action that produced a transaction. Tags are dotted;
// Is("delete") matches both "delete" and "delete.cut".
type Event string

// Known events.
const (
	EventNone   Event = ""
	EventInput  Event = "input"
	EventType   Event = "input.type"
	EventPaste  Event = "input.paste"
	EventDelete Event = "delete"
	EventCut    Event = "delete.cut"
	EventCopy   Event = "copy"
	EventSelect Event = "select"
	EventUndo   Event = "undo"
	EventRedo   Event = "redo"
	EventRemote Event = "remote"
)

// Is reports whether the event equals tag or is nested under it.
func (e Event) Is(tag Event) bool {
	if e == tag {
		return true
	}
	return tag != "" && strings.HasPrefix(string(e), string(tag)+".")
}

// Selection is a single selection range. Anchor is where the selection
// started and Head is where the cursor is.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor creates a collapsed selection at pos.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// Range returns the selection as an ordered range.
func (s Selection) Range() text.Range {
	return text.NewRange(s.Anchor, s.Head)
}

// IsEmpty returns true if the selection is a bare cursor.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Map maps the selection through a change set.
func (s Selection) Map(cs text.ChangeSet) Selection {
	return Selection{
		Anchor: cs.MapPos(s.Anchor, -1),
		Head:   cs.MapPos(s.Head, 1),
	}
}

// Spec describes a transaction before it is applied.
type Spec struct {
	Changes   []text.Edit
	Selection *Selection
	Effects   []Effect
	Event     Event
}

// Transaction is an applied spec: the documents before and after, the
// change set between them, both selections, and the effects.
type Transaction struct {
	StartDoc       text.Doc
	Doc            text.Doc
	Changes        text.ChangeSet
	StartSelection Selection
	Selection      Selection
	Effects        []Effect
	Event          Event
}

// New applies spec to doc. When the spec carries no selection the old
// selection is mapped through the changes.
func New(doc text.Doc, sel Selection, spec Spec) (Transaction, error) {
	cs, err := text.NewChangeSet(spec.Changes...)
	if err != nil {
		return Transaction{}, fmt.Errorf("building change set: %w", err)
	}
	next, err := cs.Apply(doc)
	if err != nil {
		return Transaction{}, fmt.Errorf("applying changes: %w", err)
	}

	newSel := sel.Map(cs)
	if spec.Selection != nil {
		newSel = *spec.Selection
	}
	if !newSel.Range().IsValid(next.Len()) {
		return Transaction{}, fmt.Errorf("%w: %v in document of length %d", ErrSelectionOutOfRange, newSel, next.Len())
	}

	return Transaction{
		StartDoc:       doc,
		Doc:            next,
		Changes:        cs,
		StartSelection: sel,
		Selection:      newSel,
		Effects:        spec.Effects,
		Event:          spec.Event,
	}, nil
}

// DocChanged reports whether the transaction changes the text.
func (tr Transaction) DocChanged() bool {
	return !tr.Changes.IsEmpty()
}

// SelectionChanged reports whether the selection moved.
func (tr Transaction) SelectionChanged() bool {
	return tr.Selection != tr.StartSelection
}
