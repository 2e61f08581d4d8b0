package text

import "fmt"

// Edit replaces the old-document span [From, To) with Insert.
type Edit struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Insert string `json:"insert,omitempty"`
}

// NewInsert creates an edit that inserts text at a position.
func NewInsert(pos int, text string) Edit {
	return Edit{From: pos, To: pos, Insert: text}
}

// NewDelete creates an edit that deletes a span.
func NewDelete(from, to int) Edit {
	return Edit{From: from, To: to}
}

// NewReplace creates an edit that replaces a span with text.
func NewReplace(from, to int, text string) Edit {
	return Edit{From: from, To: to, Insert: text}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.From == e.To:
		return fmt.Sprintf("Insert(%d, %q)", e.From, e.Insert)
	case e.Insert == "":
		return fmt.Sprintf("Delete[%d:%d)", e.From, e.To)
	default:
		return fmt.Sprintf("Replace[%d:%d) with %q", e.From, e.To, e.Insert)
	}
}

// Range returns the old-document span the edit replaces.
func (e Edit) Range() Range {
	return Range{From: e.From, To: e.To}
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.From == e.To && e.Insert == ""
}

// Delta returns the change in document length caused by this edit.
func (e Edit) Delta() int {
	return len(e.Insert) - (e.To - e.From)
}
