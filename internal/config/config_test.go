package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "marginalia.toml", `
[decoration]
numbering = true
heading_start = 2
selection_delay = "150ms"

[widgets]
navigation_tags = ["Note", "Cite"]

[[widgets.definitions]]
tag = "Note"
kind = "component"
component = "NoteView"
block = true

[[widgets.definitions]]
tag = "Badge"
kind = "lua"
script = "badge.lua"
when = 'attrs.label != ""'
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Decoration.Numbering || cfg.Decoration.HeadingStart != 2 {
		t.Errorf("decoration = %+v", cfg.Decoration)
	}
	if cfg.Decoration.SelectionDelay.Duration != 150*time.Millisecond {
		t.Errorf("selection_delay = %v", cfg.Decoration.SelectionDelay)
	}
	if cfg.Decoration.BulletIndent != 2 {
		t.Errorf("bullet_indent default lost: %d", cfg.Decoration.BulletIndent)
	}
	if len(cfg.Widgets.NavigationTags) != 2 {
		t.Errorf("navigation_tags = %v", cfg.Widgets.NavigationTags)
	}
	defs := cfg.Widgets.Definitions
	if len(defs) != 2 || defs[0].Component != "NoteView" || !defs[0].Block {
		t.Fatalf("definitions = %+v", defs)
	}
	if want := filepath.Join(filepath.Dir(path), "badge.lua"); defs[1].Script != want {
		t.Errorf("script = %q, want %q", defs[1].Script, want)
	}
	if defs[1].LuaFunction() != "render" {
		t.Errorf("LuaFunction = %q", defs[1].LuaFunction())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "marginalia.yaml", `
decoration:
  ordered_indent: 4
annotation:
  proximity_delay: 1s
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decoration.OrderedIndent != 4 {
		t.Errorf("ordered_indent = %d", cfg.Decoration.OrderedIndent)
	}
	if cfg.Annotation.ProximityDelay.Duration != time.Second {
		t.Errorf("proximity_delay = %v", cfg.Annotation.ProximityDelay)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decoration.HeadingStart != 1 {
		t.Errorf("heading_start = %d, want 1", cfg.Decoration.HeadingStart)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want error
	}{
		{"bad toml", "c.toml", "[decoration\n", nil},
		{"unknown key", "c.toml", "[decoration]\nnumber = true\n", nil},
		{"bad yaml", "c.yaml", "decoration: [\n", nil},
		{"bad duration", "c.toml", "[decoration]\nselection_delay = \"soon\"\n", nil},
		{"out of range", "c.toml", "[decoration]\nheading_start = 7\n", ErrInvalidConfig},
		{"bad log level", "c.yaml", "log:\n  level: loud\n", ErrInvalidConfig},
		{"unknown format", "c.json", "{}", ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTOMLParseErrorPosition(t *testing.T) {
	_, err := Decode("inline", FormatTOML, []byte("[decoration]\nnumbering = \n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if pe.Line == 0 || pe.Path != "inline" {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestValidateDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []WidgetDefinition
	}{
		{"missing tag", []WidgetDefinition{{Kind: KindComponent, Component: "X"}}},
		{"duplicate", []WidgetDefinition{{Tag: "A", Kind: KindComponent, Component: "X"}, {Tag: "A", Kind: KindComponent, Component: "Y"}}},
		{"component without name", []WidgetDefinition{{Tag: "A", Kind: KindComponent}}},
		{"lua without script", []WidgetDefinition{{Tag: "A", Kind: KindLua}}},
		{"unknown kind", []WidgetDefinition{{Tag: "A", Kind: "react"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Widgets.Definitions = tt.defs
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MARGINALIA_NUMBERING":       "true",
		"MARGINALIA_HEADING_START":   "3",
		"MARGINALIA_SELECTION_DELAY": "40ms",
		"MARGINALIA_NAV_TAGS":        "Note, Cite,",
		"MARGINALIA_LOG_LEVEL":       "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if !cfg.Decoration.Numbering || cfg.Decoration.HeadingStart != 3 {
		t.Errorf("decoration = %+v", cfg.Decoration)
	}
	if cfg.Decoration.SelectionDelay.Duration != 40*time.Millisecond {
		t.Errorf("selection_delay = %v", cfg.Decoration.SelectionDelay)
	}
	if got := cfg.Widgets.NavigationTags; len(got) != 2 || got[0] != "Note" || got[1] != "Cite" {
		t.Errorf("navigation_tags = %q", got)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}

	env = map[string]string{"MARGINALIA_BULLET_INDENT": "wide"}
	if err := cfg.ApplyEnv(lookup); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad int: err = %v", err)
	}
}
