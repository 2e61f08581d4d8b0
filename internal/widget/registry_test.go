package widget

import (
	"errors"
	"testing"

	"github.com/dshills/marginalia/internal/plugin/lua"
)

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	factory := func(Props) (any, error) { return "x", nil }

	if err := reg.Register(Definition{Tag: "A"}); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("no renderer: err = %v", err)
	}
	if err := reg.Register(Definition{Tag: "A", Factory: factory, Component: "C"}); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("both renderers: err = %v", err)
	}
	if err := reg.Register(Definition{Tag: "A", Factory: factory, When: "attrs.x >"}); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("bad predicate: err = %v", err)
	}
	if err := reg.Register(Definition{Tag: "A", Factory: factory}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(Definition{Tag: "A", Component: "C"}); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("duplicate: err = %v", err)
	}
	if reg.Tags() != 1 {
		t.Errorf("Tags = %d, want 1", reg.Tags())
	}
}

func TestLookupWhen(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Definition{Tag: "Note", Component: "NoteView", When: `attrs.kind == "info"`})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		el   *Element
		want bool
	}{
		{"match", &Element{Tag: "Note", Attrs: map[string]any{"kind": "info"}}, true},
		{"predicate false", &Element{Tag: "Note", Attrs: map[string]any{"kind": "warn"}}, false},
		{"unknown tag", &Element{Tag: "Other"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok, err := reg.Lookup(tt.el)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if ok != tt.want {
				t.Errorf("ok = %v, want %v", ok, tt.want)
			}
			if ok && def.Component != "NoteView" {
				t.Errorf("Component = %q", def.Component)
			}
		})
	}
}

func TestRegisterLua(t *testing.T) {
	state := lua.NewState()
	defer state.Close()
	if err := state.DoString(`function badge(p) return "[" .. string.upper(p.label) .. "]" end`); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	if err := reg.RegisterLua("Badge", state, "missing", false, ""); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("missing function: err = %v", err)
	}
	if err := reg.RegisterLua("Badge", state, "badge", false, ""); err != nil {
		t.Fatalf("RegisterLua: %v", err)
	}

	def, ok, _ := reg.Lookup(&Element{Tag: "Badge"})
	if !ok {
		t.Fatal("Badge not found")
	}
	v, err := render(def, Props{"label": "new"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v != "[NEW]" {
		t.Errorf("render = %v, want [NEW]", v)
	}
}

func TestRenderRecoversPanic(t *testing.T) {
	def := Definition{Tag: "Boom", Factory: func(Props) (any, error) { panic("boom") }}
	if _, err := render(def, nil); err == nil {
		t.Error("expected error from panicking factory")
	}
}
