// Package txn defines transactions, the single mutation path of marginalia.
//
// A Transaction bundles text changes, the resulting selection, typed effects
// and a user-event tag. The host editor builds one from a Spec, applies it
// atomically, and hands it to the engine, which recomputes every derived
// structure synchronously within the same call.
//
// # Effects
//
// Effects are typed values attached to a transaction. An EffectType is
// declared once per kind of effect:
//
//	var setFlag = txn.Define[bool]("flag.set")
//
//	tr, _ := txn.New(doc, sel, txn.Spec{Effects: []txn.Effect{setFlag.Of(true)}})
//	for _, v := range setFlag.All(tr.Effects) {
//	    // ...
//	}
//
// Matching is by EffectType identity, not by name, so two packages may use
// the same name without colliding.
package txn
