// Package anchor provides stable, edit-surviving position references.
//
// An Anchor is an opaque, serializable handle. The Service that created it
// resolves it to the range it currently covers; the range follows the
// anchored text as the document is edited elsewhere. Once the anchored
// content is fully removed the anchor resolves to nothing, and it stays
// that way even if identical text is typed again or restored by an undo.
// Recovering from that is the job of the annotation package.
//
// Tracker is the in-process Service. It must see every change set applied
// to the document, in order, through Map. Remapper wraps any Service, so an
// external implementation can be used safely: it validates resolved ranges
// against the document and converts panics into "unresolved".
package anchor
