// Package engine ties the annotation, decoration and widget components
// together for one editor.
//
// An Engine owns every per-editor resource: the anchor tracker, the
// annotation store and its clipboard-recovery slot, the image cache, the
// widget builder with its buffered state, and the undo history. Every
// change arrives as a transaction spec through Dispatch, which runs the
// pipeline in order:
//
//  1. build the transaction against the current document and selection
//  2. capture cut/copy payloads and compute delete markers
//  3. map anchors through the changes
//  4. add Restore effects for a matching paste or an undo
//  5. reduce the annotation state
//  6. record history with the delete markers as inverse effects
//  7. rebuild decorations and widgets per their update policies
//
// Callbacks (onDelete, onProximity, render hooks) run synchronously inside
// Dispatch and must not call back into the engine.
package engine
