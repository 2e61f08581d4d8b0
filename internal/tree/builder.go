package tree

// Builder assembles a Tree in document order. Nodes are opened and closed
// like tags; leaves are added in one call. Builder enforces nothing about
// overlap, so callers must add children in ascending order.
type Builder struct {
	nodes []node
	stack []int
}

// NewBuilder starts a tree whose Document root spans [0, length].
func NewBuilder(length int) *Builder {
	b := &Builder{}
	b.nodes = append(b.nodes, node{typ: Document, from: 0, to: length})
	b.stack = append(b.stack, 0)
	return b
}

func (b *Builder) add(t NodeType, from, to int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{typ: t, from: from, to: to})
	parent := b.stack[len(b.stack)-1]
	b.nodes[parent].children = append(b.nodes[parent].children, idx)
	return idx
}

// Open starts a container node at from. Its end is set by Close.
func (b *Builder) Open(t NodeType, from int) {
	idx := b.add(t, from, from)
	b.stack = append(b.stack, idx)
}

// Close ends the innermost open container at to.
func (b *Builder) Close(to int) {
	if len(b.stack) <= 1 {
		return
	}
	idx := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.nodes[idx].to = to
}

// Leaf adds a childless node.
func (b *Builder) Leaf(t NodeType, from, to int) {
	b.add(t, from, to)
}

// Depth returns the number of open containers, excluding the root.
func (b *Builder) Depth() int {
	return len(b.stack) - 1
}

// Build closes any open containers at their current end and returns the tree.
func (b *Builder) Build() *Tree {
	for len(b.stack) > 1 {
		idx := b.stack[len(b.stack)-1]
		b.Close(b.nodes[idx].to)
	}
	return &Tree{nodes: b.nodes}
}
