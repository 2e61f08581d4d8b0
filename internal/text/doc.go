// Package text provides the immutable document model shared by every
// marginalia component.
//
// A Doc is a read-only snapshot of the host editor's text. Edits never mutate
// a Doc; instead a ChangeSet describes a batch of non-overlapping edits in the
// coordinates of the old document and Apply produces the new snapshot.
//
// # Positions
//
// All positions are byte offsets into the document text. A Range is the
// half-open span [From, To). Positions are carried across edits with
// ChangeSet.MapPos, which takes an association direction:
//
//	assoc < 0  stays before text inserted exactly at the position
//	assoc > 0  moves after text inserted exactly at the position
//
// Mapping through a ChangeSet is the only supported way to keep a position
// valid after an edit. Applying offset arithmetic by hand goes stale as soon
// as any earlier part of the document changes.
//
// # Lines
//
// Doc indexes line starts at construction so LineAt and Line are O(log n)
// and O(1). Lines are 0-indexed and exclude their trailing newline.
package text
