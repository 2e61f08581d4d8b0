package text

import (
	"errors"
	"testing"
)

func TestNewChangeSetSortsAndMerges(t *testing.T) {
	cs, err := NewChangeSet(NewInsert(10, "b"), NewDelete(2, 4), NewInsert(4, "a"))
	if err != nil {
		t.Fatalf("NewChangeSet failed: %v", err)
	}
	edits := cs.Edits()
	if len(edits) != 2 {
		t.Fatalf("expected 2 edits after merge, got %d: %v", len(edits), edits)
	}
	if edits[0] != (Edit{From: 2, To: 4, Insert: "a"}) {
		t.Errorf("edits[0] = %v, want Replace[2:4) with \"a\"", edits[0])
	}
	if edits[1].From != 10 {
		t.Errorf("edits[1].From = %d, want 10", edits[1].From)
	}
}

func TestNewChangeSetOverlap(t *testing.T) {
	_, err := NewChangeSet(NewDelete(2, 6), NewDelete(4, 8))
	if !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}
	_, err = NewChangeSet(Edit{From: 5, To: 2})
	if !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestChangeSetApply(t *testing.T) {
	doc := NewDoc("hello world")
	cs := MustChangeSet(NewReplace(0, 5, "goodbye"), NewInsert(11, "!"))

	got, err := cs.Apply(doc)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.String() != "goodbye world!" {
		t.Errorf("Apply = %q, want %q", got.String(), "goodbye world!")
	}

	if _, err := MustChangeSet(NewDelete(20, 25)).Apply(doc); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestChangeSetMapPos(t *testing.T) {
	cs := MustChangeSet(NewInsert(5, "XX"), NewDelete(10, 14))

	tests := []struct {
		name  string
		pos   int
		assoc int
		want  int
	}{
		{"before everything", 3, 1, 3},
		{"insertion point left", 5, -1, 5},
		{"insertion point right", 5, 1, 7},
		{"between edits", 8, 1, 10},
		{"deletion start", 10, 1, 12},
		{"inside deletion left", 12, -1, 12},
		{"inside deletion right", 12, 1, 12},
		{"deletion end", 14, -1, 12},
		{"after everything", 20, -1, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cs.MapPos(tt.pos, tt.assoc); got != tt.want {
				t.Errorf("MapPos(%d, %d) = %d, want %d", tt.pos, tt.assoc, got, tt.want)
			}
		})
	}
}

func TestChangeSetMapRangeExcludesEdgeInserts(t *testing.T) {
	r := Range{From: 4, To: 8}

	atStart := MustChangeSet(NewInsert(4, "ab"))
	if got := atStart.MapRange(r); got != (Range{From: 6, To: 10}) {
		t.Errorf("insert at start: got %v, want [6:10)", got)
	}

	atEnd := MustChangeSet(NewInsert(8, "ab"))
	if got := atEnd.MapRange(r); got != r {
		t.Errorf("insert at end: got %v, want %v", got, r)
	}

	covering := MustChangeSet(NewDelete(2, 10))
	if got := covering.MapRange(r); !got.IsEmpty() {
		t.Errorf("covering delete should collapse range, got %v", got)
	}
}

func TestChangeSetInvert(t *testing.T) {
	doc := NewDoc("one two three")
	cs := MustChangeSet(NewReplace(4, 7, "2"), NewDelete(8, 13))

	next, err := cs.Apply(doc)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	back, err := cs.Invert(doc).Apply(next)
	if err != nil {
		t.Fatalf("Apply inverse failed: %v", err)
	}
	if back.String() != doc.String() {
		t.Errorf("inverse round trip = %q, want %q", back.String(), doc.String())
	}
}

func TestChangeSetInsertedAndDeleted(t *testing.T) {
	cs := MustChangeSet(NewReplace(2, 4, "xyz"), NewInsert(10, "q"))

	ins := cs.Inserted()
	if len(ins) != 2 || ins[0].At != 2 || ins[1].At != 11 {
		t.Errorf("Inserted = %+v, want pieces at 2 and 11", ins)
	}
	if cs.InsertedText() != "xyzq" {
		t.Errorf("InsertedText = %q, want %q", cs.InsertedText(), "xyzq")
	}
	del := cs.Deleted()
	if len(del) != 1 || del[0] != (Range{From: 2, To: 4}) {
		t.Errorf("Deleted = %v, want [[2:4)]", del)
	}
	if cs.TouchedFrom() != 2 {
		t.Errorf("TouchedFrom = %d, want 2", cs.TouchedFrom())
	}
	if (ChangeSet{}).TouchedFrom() != -1 {
		t.Error("empty change set should report TouchedFrom -1")
	}
}
