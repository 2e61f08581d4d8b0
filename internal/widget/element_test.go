package widget

import (
	"errors"
	"testing"
)

func TestParseElement(t *testing.T) {
	src := `<Note kind="info" level=2 open data-x={1 + 2}>hi <b></Note>`
	el, err := Parse(src, 5)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if el.Tag != "Note" {
		t.Errorf("Tag = %q, want Note", el.Tag)
	}
	if el.From != 5 || el.To != 5+len(src) {
		t.Errorf("span = [%d,%d], want [5,%d]", el.From, el.To, 5+len(src))
	}
	if el.Children != "hi <b>" {
		t.Errorf("Children = %q", el.Children)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"kind", "info"},
		{"level", 2.0},
		{"open", true},
		{"data-x", 3},
	}
	for _, tt := range tests {
		if got := el.Attrs[tt.key]; got != tt.want {
			t.Errorf("Attrs[%s] = %#v, want %#v", tt.key, got, tt.want)
		}
	}
}

func TestParseSelfClosing(t *testing.T) {
	el, err := Parse(`<Cite ref="a>b" id="c1"/>`, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if el.Attrs["ref"] != "a>b" {
		t.Errorf("ref = %v", el.Attrs["ref"])
	}
	if el.ID() != "c1" {
		t.Errorf("ID = %q, want c1", el.ID())
	}
	if el.Children != "" {
		t.Errorf("Children = %q, want empty", el.Children)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no name", `<="x"/>`},
		{"bad attribute", `<Note =3/>`},
		{"unterminated", `<Note kind="x"`},
		{"missing close", `<Note>body`},
		{"bad expr", `<Note n={1 +}/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, 7)
			if !errors.Is(err, ErrMalformedTag) {
				t.Fatalf("err = %v, want ErrMalformedTag", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) || pe.From != 7 {
				t.Errorf("ParseError = %v, want From 7", pe)
			}
		})
	}
}
