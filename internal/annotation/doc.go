// Package annotation keeps externally owned annotations positioned as the
// document changes.
//
// The Store is a reducer over transactions: each transaction may carry
// SetAnnotations, SetSelection and Restore effects, and every document
// change re-resolves every annotation's anchor. An annotation whose range
// collapses is reported once through the OnDelete callback and stays in the
// store, unresolved, so a later undo or paste can bring it back.
//
// Recovery layers cut, copy, paste and undo handling on top of the Store.
// It owns the single tracked clipboard payload and turns deletions into
// RestorableDeleteMarkers that travel on a transaction's inverse effects.
package annotation
