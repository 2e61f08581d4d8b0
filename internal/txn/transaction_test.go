package txn

import (
	"errors"
	"testing"

	"github.com/dshills/marginalia/internal/text"
)

var testFlag = Define[int]("test.flag")

func TestNewMapsSelection(t *testing.T) {
	doc := text.NewDoc("hello world")
	tr, err := New(doc, Cursor(6), Spec{
		Changes: []text.Edit{text.NewInsert(0, ">> ")},
		Event:   EventType,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tr.Doc.String() != ">> hello world" {
		t.Errorf("Doc = %q", tr.Doc.String())
	}
	if tr.Selection.Head != 9 {
		t.Errorf("Selection.Head = %d, want 9", tr.Selection.Head)
	}
	if !tr.DocChanged() || !tr.SelectionChanged() {
		t.Error("expected doc and selection to change")
	}
}

func TestNewRejectsBadSelection(t *testing.T) {
	sel := Cursor(50)
	_, err := New(text.NewDoc("abc"), Cursor(0), Spec{Selection: &sel})
	if !errors.Is(err, ErrSelectionOutOfRange) {
		t.Errorf("expected ErrSelectionOutOfRange, got %v", err)
	}
}

func TestEffectMatch(t *testing.T) {
	other := Define[int]("test.flag")
	effects := []Effect{testFlag.Of(1), other.Of(2), testFlag.Of(3)}

	got := testFlag.All(effects)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("All = %v, want [1 3]", got)
	}
	if _, ok := testFlag.Match(effects[1]); ok {
		t.Error("effects with the same name but different type must not match")
	}
	if !other.Has(effects) {
		t.Error("Has should find the other effect")
	}
}

func TestEventIs(t *testing.T) {
	if !EventCut.Is(EventDelete) {
		t.Error("delete.cut should be a delete")
	}
	if EventDelete.Is(EventCut) {
		t.Error("delete should not be a delete.cut")
	}
	if !EventPaste.Is(EventInput) || EventCopy.Is(EventInput) {
		t.Error("unexpected input classification")
	}
}
