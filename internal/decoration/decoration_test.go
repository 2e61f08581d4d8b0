package decoration

import "testing"

func TestSetOrdering(t *testing.T) {
	mark := &Descriptor{From: 4, To: 6, Kind: KindMark}
	line := &Descriptor{From: 4, To: 4, Kind: KindLine}
	first := &Descriptor{From: 0, To: 2, Kind: KindReplace}
	s := NewSet(mark, line, first)

	want := []*Descriptor{first, line, mark}
	for i, d := range s.All() {
		if d != want[i] {
			t.Errorf("At(%d) = %+v, want %+v", i, d, want[i])
		}
	}
	if got := s.In(3, 4); len(got) != 2 {
		t.Errorf("In(3,4) = %d descriptors, want 2", len(got))
	}
}

func TestSetConcatKeepsPrefix(t *testing.T) {
	a := &Descriptor{From: 0, To: 1, Kind: KindWidget}
	s := NewSet(a)
	b := &Descriptor{From: 5, To: 6, Kind: KindWidget}
	next := s.Concat(b)
	if next.Len() != 2 || next.At(0) != a || next.At(1) != b {
		t.Errorf("Concat = %+v", next.All())
	}
	if s.Len() != 1 {
		t.Error("Concat modified the receiver")
	}
}

func TestKindString(t *testing.T) {
	if KindReplace.String() != "replace" || Kind(9).String() != "unknown" {
		t.Error("Kind.String mismatch")
	}
}
