// Package fold implements the aggregation core behind flame graph
// generation: a prefix tree over call paths where inserting a weighted
// path adds the weight to every node along it, so any subtree total is
// readable directly off its node.
package fold

// nodeID addresses a node inside the tree's arena.
type nodeID int32

// rootID is the synthetic root; it carries no frame name.
const rootID nodeID = 0

// node is the arena representation of one aggregation node. Children are
// looked up by frame name and enumerated in first-insertion order.
type node struct {
	name     string
	total    uint64
	terminal bool
	children map[string]nodeID
	order    []nodeID
}

// Tree aggregates weighted call paths under a synthetic root.
// The zero value is not usable; call NewTree.
type Tree struct {
	nodes []node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make([]node, 1, 64)}
}

// Insert adds weight to every node along path, creating missing nodes,
// and marks the final node as an insertion terminal. Paths are root
// first. An empty path adds the weight to the root bucket.
func (t *Tree) Insert(path []string, weight uint64) {
	cur := rootID
	t.nodes[cur].total += weight
	for _, name := range path {
		cur = t.child(cur, name)
		t.nodes[cur].total += weight
	}
	t.nodes[cur].terminal = true
}

// child returns parent's child named name, creating it if missing.
func (t *Tree) child(parent nodeID, name string) nodeID {
	if id, ok := t.nodes[parent].children[name]; ok {
		return id
	}
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{name: name})
	// Reacquire after append: growing the arena moves it.
	p := &t.nodes[parent]
	if p.children == nil {
		p.children = make(map[string]nodeID)
	}
	p.children[name] = id
	p.order = append(p.order, id)
	return id
}

// exclusive is the weight attributed to the node itself: its total minus
// the weight accounted for by its children.
func (t *Tree) exclusive(id nodeID) uint64 {
	n := &t.nodes[id]
	ex := n.total
	for _, c := range n.order {
		ex -= t.nodes[c].total
	}
	return ex
}

// TotalWeight returns the sum of all inserted weights.
func (t *Tree) TotalWeight() uint64 {
	return t.nodes[rootID].total
}

// Len returns the number of aggregation nodes, excluding the synthetic
// root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Root returns a view of the synthetic root node.
func (t *Tree) Root() Node {
	return Node{t: t, id: rootID}
}

// Node is a read-only view of one aggregation node.
type Node struct {
	t  *Tree
	id nodeID
}

// Name returns the node's frame name. The root's name is empty.
func (n Node) Name() string {
	return n.t.nodes[n.id].name
}

// Total returns the node's inclusive weight.
func (n Node) Total() uint64 {
	return n.t.nodes[n.id].total
}

// Terminal reports whether any insertion ended at this node.
func (n Node) Terminal() bool {
	return n.t.nodes[n.id].terminal
}

// Exclusive returns the node's self weight.
func (n Node) Exclusive() uint64 {
	return n.t.exclusive(n.id)
}

// Children returns the node's children in first-insertion order.
func (n Node) Children() []Node {
	order := n.t.nodes[n.id].order
	if len(order) == 0 {
		return nil
	}
	res := make([]Node, len(order))
	for i, id := range order {
		res[i] = Node{t: n.t, id: id}
	}
	return res
}
