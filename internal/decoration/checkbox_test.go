package decoration

import (
	"testing"

	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree/markdown"
)

func TestToggleCheckbox(t *testing.T) {
	doc := text.NewDoc("- [ ] task\n- [x] done")
	tr := markdown.New().Parse(doc)

	edit, ok := ToggleCheckbox(doc, tr, 3, false)
	if !ok {
		t.Fatal("ToggleCheckbox found no task")
	}
	if edit != text.NewReplace(3, 4, "x") {
		t.Errorf("edit = %v, want replace [3,4) with x", edit)
	}

	cs := text.MustChangeSet(edit)
	next, err := cs.Apply(doc)
	if err != nil {
		t.Fatal(err)
	}
	if next.String() != "- [x] task\n- [x] done" {
		t.Fatalf("doc = %q", next.String())
	}
	out := NewBuilder().Build(Input{Doc: next, Tree: markdown.New().Parse(next)})
	boxes := payloads[Checkbox](out.Atomic)
	if len(boxes) != 2 || !boxes[0].Checked || !boxes[1].Checked {
		t.Errorf("checkboxes after toggle = %+v", boxes)
	}

	// Clicking anywhere in the second task unchecks it.
	edit, ok = ToggleCheckbox(next, markdown.New().Parse(next), 19, false)
	if !ok || edit != text.NewReplace(14, 15, " ") {
		t.Errorf("second toggle = %v, %v", edit, ok)
	}
}

func TestToggleCheckboxRefusals(t *testing.T) {
	doc := text.NewDoc("- [ ] task\nplain")
	tr := markdown.New().Parse(doc)
	if _, ok := ToggleCheckbox(doc, tr, 3, true); ok {
		t.Error("read-only toggle should be refused")
	}
	if _, ok := ToggleCheckbox(doc, tr, 13, false); ok {
		t.Error("toggle outside a task should be refused")
	}
}
