// Package history provides undo/redo over transactions.
//
// Each recorded transaction keeps its forward changes, the inverse changes
// computed against its start document, both selections, and the inverse
// effects attached to it. Undo produces a transaction spec tagged with the
// undo event that carries those inverse effects, so state that was removed
// by the original edit can restore itself:
//
//	h := history.New(1000)
//	h.Record(tr, markers)
//	err := h.Undo(func(spec txn.Spec) ([]txn.Effect, error) {
//		_, out, err := eng.Dispatch(spec)
//		return out.InverseEffects, err
//	})
//
// # Grouping
//
// Transactions recorded between BeginGroup and EndGroup undo and redo as
// one unit, applied step by step.
package history
