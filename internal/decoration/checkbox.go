package decoration

import (
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
)

// ToggleCheckbox returns the edit that flips the task marker at pos,
// rewriting the single state character of "[ ]" or "[x]" in place. pos may
// be anywhere inside the marker or its task. It reports false when there is
// no task at pos or the document is read-only.
func ToggleCheckbox(doc text.Doc, tr *tree.Tree, pos int, readOnly bool) (text.Edit, bool) {
	if readOnly || tr == nil {
		return text.Edit{}, false
	}
	n, ok := tr.Innermost(pos, tree.Task, tree.TaskMarker)
	if !ok {
		return text.Edit{}, false
	}
	switch n.Type() {
	case tree.TaskMarker:
	case tree.Task:
		if n, ok = n.Child(tree.TaskMarker); !ok {
			return text.Edit{}, false
		}
	default:
		return text.Edit{}, false
	}

	at := n.From() + 1
	next := "x"
	switch doc.Slice(at, at+1) {
	case " ":
	case "x", "X":
		next = " "
	default:
		return text.Edit{}, false
	}
	return text.NewReplace(at, at+1, next), true
}
