package text

import "testing"

func TestDocLines(t *testing.T) {
	doc := NewDoc("alpha\nbeta\n\ngamma")

	if doc.LineCount() != 4 {
		t.Fatalf("LineCount = %d, want 4", doc.LineCount())
	}

	tests := []struct {
		pos      int
		wantLine int
		wantText string
	}{
		{0, 0, "alpha"},
		{5, 0, "alpha"},
		{6, 1, "beta"},
		{11, 2, ""},
		{12, 3, "gamma"},
		{99, 3, "gamma"},
	}
	for _, tt := range tests {
		line := doc.LineAt(tt.pos)
		if line.Number != tt.wantLine || line.Text != tt.wantText {
			t.Errorf("LineAt(%d) = %d %q, want %d %q", tt.pos, line.Number, line.Text, tt.wantLine, tt.wantText)
		}
	}
}

func TestDocSliceClamps(t *testing.T) {
	doc := NewDoc("hello")
	if got := doc.Slice(-3, 99); got != "hello" {
		t.Errorf("Slice(-3, 99) = %q, want %q", got, "hello")
	}
	if got := doc.Slice(4, 2); got != "" {
		t.Errorf("Slice(4, 2) = %q, want empty", got)
	}
}

func TestZeroDoc(t *testing.T) {
	var doc Doc
	if doc.Len() != 0 || doc.LineCount() != 1 {
		t.Errorf("zero doc: Len = %d, LineCount = %d", doc.Len(), doc.LineCount())
	}
	if line := doc.LineAt(3); line.From != 0 || line.To != 0 {
		t.Errorf("zero doc LineAt = %+v", line)
	}
}

func TestRangeDistance(t *testing.T) {
	r := Range{From: 10, To: 20}
	if r.Distance(4) != 6 || r.Distance(23) != 3 || r.Distance(14) != 4 {
		t.Errorf("unexpected distances: %d %d %d", r.Distance(4), r.Distance(23), r.Distance(14))
	}
	if !r.Touches(20) || r.Contains(20) {
		t.Error("Touches should include the end edge, Contains should not")
	}
}
