package annotation

import (
	"slices"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/txn"
)

// Result is the outcome of one reduction.
type Result struct {
	State State
	// Deleted lists ids whose range collapsed in this transaction.
	Deleted []string
	// Skipped lists SetAnnotations ids dropped because their anchor did not
	// resolve, and Restore ids dropped because the id was still live.
	Skipped []string
}

// Reduce computes the state after tr. It resolves anchors through remap but
// does not map them; the caller maps the anchor service before reducing.
func Reduce(prev State, tr txn.Transaction, remap *anchor.Remapper) Result {
	var res Result

	before := make(map[string]Annotation, len(prev.Annotations))
	for _, a := range prev.Annotations {
		before[a.ID] = a
	}

	list := prev.Annotations
	if sets := SetAnnotations.All(tr.Effects); len(sets) > 0 {
		entries := sets[len(sets)-1]
		list = make([]Annotation, 0, len(entries))
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			if seen[e.ID] {
				continue
			}
			if _, ok := remap.Resolve(e.Anchor, tr.Doc); !ok {
				res.Skipped = append(res.Skipped, e.ID)
				continue
			}
			seen[e.ID] = true
			list = append(list, Annotation{ID: e.ID, Anchor: e.Anchor})
		}
	} else {
		list = slices.Clone(list)
	}

	for _, e := range Restore.All(tr.Effects) {
		i := slices.IndexFunc(list, func(a Annotation) bool { return a.ID == e.ID })
		switch {
		case i < 0:
			list = append(list, Annotation{ID: e.ID, Anchor: e.Anchor})
		case before[e.ID].live():
			res.Skipped = append(res.Skipped, e.ID)
		default:
			list[i].Anchor = e.Anchor
		}
	}

	for i := range list {
		a := &list[i]
		a.Range, a.Resolved = remap.Resolve(a.Anchor, tr.Doc)
		p, had := before[a.ID]

		switch {
		case a.Resolved && !a.Range.IsEmpty():
			a.Deleted = false
		case had && p.Deleted && p.Anchor == a.Anchor:
			a.Deleted = true
		case had && p.live():
			a.Deleted = true
			res.Deleted = append(res.Deleted, a.ID)
		default:
			a.Deleted = false
		}
	}

	res.State.Annotations = list
	if sels := SetSelection.All(tr.Effects); len(sels) > 0 {
		res.State.Selection = sels[len(sels)-1]
	} else {
		res.State.Selection = Proximity(res.State, tr.Selection.Head)
	}
	return res
}

// Proximity scans the active annotations of s against cursor head h.
//
// The first annotation containing h (edges included) becomes Current.
// Otherwise Closest is the annotation whose nearer edge is closest to h.
// Candidates are visited by lower from, then lower to, then lower id, and
// the first one wins every tie.
func Proximity(s State, h int) SelectionState {
	spans := s.Spans()
	for _, sp := range spans {
		if sp.Range.Touches(h) {
			return SelectionState{Current: sp.ID}
		}
	}

	var out SelectionState
	best := -1
	for _, sp := range spans {
		d := sp.Range.Distance(h)
		if best < 0 || d < best {
			best = d
			out.Closest = sp.ID
		}
	}
	return out
}
