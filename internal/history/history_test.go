package history

import (
	"errors"
	"testing"

	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
)

var note = txn.Define[string]("test.note")

type harness struct {
	t     *testing.T
	doc   text.Doc
	sel   txn.Selection
	h     *History
	specs []txn.Spec
}

func newHarness(t *testing.T, s string) *harness {
	return &harness{t: t, doc: text.NewDoc(s), h: New(10)}
}

// edit dispatches and records a user transaction.
func (hs *harness) edit(effects []txn.Effect, edits ...text.Edit) {
	hs.t.Helper()
	tr, err := txn.New(hs.doc, hs.sel, txn.Spec{Changes: edits, Event: txn.EventInput})
	if err != nil {
		hs.t.Fatalf("txn.New: %v", err)
	}
	hs.doc, hs.sel = tr.Doc, tr.Selection
	hs.h.Record(tr, effects)
}

func (hs *harness) apply(spec txn.Spec) ([]txn.Effect, error) {
	tr, err := txn.New(hs.doc, hs.sel, spec)
	if err != nil {
		return nil, err
	}
	hs.doc, hs.sel = tr.Doc, tr.Selection
	hs.specs = append(hs.specs, spec)
	return []txn.Effect{note.Of("redone")}, nil
}

func TestUndoRedo(t *testing.T) {
	hs := newHarness(t, "hello world")
	hs.edit([]txn.Effect{note.Of("deleted")}, text.NewDelete(5, 11))
	hs.edit(nil, text.NewInsert(5, "!"))

	if err := hs.h.Undo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if err := hs.h.Undo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if got := hs.doc.String(); got != "hello world" {
		t.Fatalf("after undo = %q", got)
	}
	last := hs.specs[len(hs.specs)-1]
	if last.Event != txn.EventUndo {
		t.Errorf("event = %q, want undo", last.Event)
	}
	if got := note.All(last.Effects); len(got) != 1 || got[0] != "deleted" {
		t.Errorf("undo effects = %v, want recorded inverse effects", got)
	}

	if err := hs.h.Redo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if got := hs.doc.String(); got != "hello" {
		t.Errorf("after redo = %q, want hello", got)
	}
	if e := hs.specs[len(hs.specs)-1].Event; e != txn.EventRedo {
		t.Errorf("event = %q, want redo", e)
	}

	// Redo replaced the inverse effects of that step.
	if err := hs.h.Undo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if got := note.All(hs.specs[len(hs.specs)-1].Effects); len(got) != 1 || got[0] != "redone" {
		t.Errorf("effects after redo = %v", got)
	}
}

func TestRecordIgnores(t *testing.T) {
	hs := newHarness(t, "abc")
	tr, _ := txn.New(hs.doc, hs.sel, txn.Spec{Selection: &txn.Selection{Anchor: 1, Head: 1}})
	hs.h.Record(tr, nil)
	tr, _ = txn.New(hs.doc, hs.sel, txn.Spec{Changes: []text.Edit{text.NewInsert(0, "x")}, Event: txn.EventUndo})
	hs.h.Record(tr, nil)
	if hs.h.CanUndo() {
		t.Error("selection-only and undo transactions should not be recorded")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	hs := newHarness(t, "abc")
	hs.edit(nil, text.NewInsert(3, "d"))
	if err := hs.h.Undo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if !hs.h.CanRedo() {
		t.Fatal("expected redo")
	}
	hs.edit(nil, text.NewInsert(0, "z"))
	if hs.h.CanRedo() {
		t.Error("new edit should clear redo")
	}
}

func TestMaxEntries(t *testing.T) {
	hs := newHarness(t, "")
	hs.h = New(3)
	for i := 0; i < 5; i++ {
		hs.edit(nil, text.NewInsert(hs.doc.Len(), "x"))
	}
	if n := hs.h.UndoCount(); n != 3 {
		t.Errorf("UndoCount = %d, want 3", n)
	}
}

func TestErrors(t *testing.T) {
	h := New(0)
	noop := func(txn.Spec) ([]txn.Effect, error) { return nil, nil }
	if err := h.Undo(noop); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo err = %v", err)
	}
	if err := h.Redo(noop); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo err = %v", err)
	}
}

func TestFailedUndoKeepsEntry(t *testing.T) {
	hs := newHarness(t, "abc")
	hs.edit(nil, text.NewInsert(3, "d"))
	boom := errors.New("boom")
	err := hs.h.Undo(func(txn.Spec) ([]txn.Effect, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if hs.h.UndoCount() != 1 || hs.h.CanRedo() {
		t.Error("failed undo should leave the entry on the undo stack")
	}
}

func TestGrouping(t *testing.T) {
	hs := newHarness(t, "ab")
	hs.h.BeginGroup("replace")
	hs.edit(nil, text.NewInsert(2, "c"))
	hs.edit(nil, text.NewInsert(3, "d"))
	hs.h.EndGroup()

	info, ok := hs.h.PeekUndo()
	if !ok || info.Name != "replace" || info.Steps != 2 {
		t.Fatalf("PeekUndo = %+v, %v", info, ok)
	}
	if err := hs.h.Undo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if hs.doc.String() != "ab" {
		t.Errorf("after group undo = %q, want ab", hs.doc.String())
	}
	if err := hs.h.Redo(hs.apply); err != nil {
		t.Fatal(err)
	}
	if hs.doc.String() != "abcd" {
		t.Errorf("after group redo = %q, want abcd", hs.doc.String())
	}
}

func TestClear(t *testing.T) {
	hs := newHarness(t, "a")
	hs.edit(nil, text.NewInsert(1, "b"))
	hs.h.Clear()
	if hs.h.CanUndo() || hs.h.CanRedo() {
		t.Error("Clear should empty both stacks")
	}
}
