package tree

import (
	"github.com/dshills/marginalia/internal/text"
)

// node is an arena slot.
type node struct {
	typ      NodeType
	from, to int
	children []int
}

// Tree is an immutable arena syntax tree. Index 0 is the Document root.
type Tree struct {
	nodes []node
}

// Node is a reference to a node within a tree. The zero Node is invalid.
type Node struct {
	tree *Tree
	idx  int
}

// Root returns the Document node.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) == 0 {
		return Node{}
	}
	return Node{tree: t, idx: 0}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// IsValid reports whether the reference points at a node.
func (n Node) IsValid() bool {
	return n.tree != nil && n.idx >= 0 && n.idx < len(n.tree.nodes)
}

// Type returns the node type.
func (n Node) Type() NodeType {
	return n.tree.nodes[n.idx].typ
}

// From returns the start offset of the node.
func (n Node) From() int {
	return n.tree.nodes[n.idx].from
}

// To returns the end offset of the node.
func (n Node) To() int {
	return n.tree.nodes[n.idx].to
}

// Range returns the node's span.
func (n Node) Range() text.Range {
	nd := n.tree.nodes[n.idx]
	return text.Range{From: nd.from, To: nd.to}
}

// ID returns the arena index of the node, stable for the lifetime of the tree.
func (n Node) ID() int {
	return n.idx
}

// Children returns the node's children in document order.
func (n Node) Children() []Node {
	ids := n.tree.nodes[n.idx].children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, idx: id}
	}
	return out
}

// Child returns the first direct child of the given type.
func (n Node) Child(t NodeType) (Node, bool) {
	for _, id := range n.tree.nodes[n.idx].children {
		if n.tree.nodes[id].typ == t {
			return Node{tree: n.tree, idx: id}, true
		}
	}
	return Node{}, false
}

// ChildrenOf returns every direct child of the given type.
func (n Node) ChildrenOf(t NodeType) []Node {
	var out []Node
	for _, id := range n.tree.nodes[n.idx].children {
		if n.tree.nodes[id].typ == t {
			out = append(out, Node{tree: n.tree, idx: id})
		}
	}
	return out
}

// Iterate walks the tree depth-first in document order, visiting every node
// whose span intersects [from, to] with both edges included. enter is called
// before a node's children; returning false skips them. leave, if non-nil,
// is called after the children of every entered node.
func (t *Tree) Iterate(from, to int, enter func(Node) bool, leave func(Node)) {
	if t == nil || len(t.nodes) == 0 {
		return
	}
	t.iterate(0, from, to, enter, leave)
}

func (t *Tree) iterate(idx, from, to int, enter func(Node) bool, leave func(Node)) {
	nd := &t.nodes[idx]
	if nd.to < from || nd.from > to {
		return
	}
	n := Node{tree: t, idx: idx}
	if enter(n) {
		for _, c := range nd.children {
			if t.nodes[c].from > to {
				break
			}
			t.iterate(c, from, to, enter, leave)
		}
	}
	if leave != nil {
		leave(n)
	}
}

// Ancestors returns the path from the root down to n's parent. It is
// derived by re-walking from the root; n itself is not included.
func (t *Tree) Ancestors(n Node) []Node {
	if !n.IsValid() || n.tree != t {
		return nil
	}
	var path []Node
	cur := 0
	for cur != n.idx {
		path = append(path, Node{tree: t, idx: cur})
		next := -1
		for _, c := range t.nodes[cur].children {
			if containsIndex(t, c, n.idx) {
				next = c
				break
			}
		}
		if next < 0 {
			return nil
		}
		cur = next
	}
	return path
}

// containsIndex reports whether node idx lies in the subtree rooted at root.
// Arena indices are assigned in pre-order, so a subtree occupies a
// contiguous index interval starting at its root.
func containsIndex(t *Tree, root, idx int) bool {
	if idx < root {
		return false
	}
	last := root
	for {
		ch := t.nodes[last].children
		if len(ch) == 0 {
			break
		}
		last = ch[len(ch)-1]
	}
	return idx <= last
}

// Parent returns n's parent, derived by re-walking from the root.
func (t *Tree) Parent(n Node) (Node, bool) {
	path := t.Ancestors(n)
	if len(path) == 0 {
		return Node{}, false
	}
	return path[len(path)-1], true
}

// Innermost returns the deepest node whose span contains pos, preferring a
// node of type want when one is on the path. The second result is false
// only for an empty tree.
func (t *Tree) Innermost(pos int, want ...NodeType) (Node, bool) {
	root := t.Root()
	if !root.IsValid() {
		return Node{}, false
	}
	deepest := root
	var match Node
	t.Iterate(pos, pos, func(n Node) bool {
		deepest = n
		for _, w := range want {
			if n.Type() == w {
				match = n
			}
		}
		return true
	}, nil)
	if match.IsValid() {
		return match, true
	}
	return deepest, true
}

// Find returns every node of one of the given types in document order.
func (t *Tree) Find(types ...NodeType) []Node {
	var out []Node
	t.Iterate(0, int(^uint(0)>>1), func(n Node) bool {
		for _, ty := range types {
			if n.Type() == ty {
				out = append(out, n)
				break
			}
		}
		return true
	}, nil)
	return out
}

// Provider supplies the syntax tree for a document snapshot.
type Provider interface {
	Tree(doc text.Doc) *Tree
}
