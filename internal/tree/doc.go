// Package tree provides the read-only syntax tree consumed by the
// decoration builder and the widget registry.
//
// A Tree is an arena: nodes live in one slice and refer to their children
// by index. Nodes carry no parent pointers. Parent and ancestor
// relationships are derived on demand by re-walking from the root, which
// keeps the structure acyclic and cheap to share between snapshots.
//
// Trees are produced by a Provider, normally an incremental parser owned
// by the host editor. The markdown subpackage is the reference provider.
package tree
