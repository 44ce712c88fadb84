package fold

import (
	"bufio"
	"encoding/json"
	"io"
)

// HierarchyRootName names the synthetic root in hierarchical output.
const HierarchyRootName = "all"

// HierarchyNode is the JSON form d3-style flame graph renderers consume:
// a frame with its self and subtree weights and its children in
// first-insertion order.
type HierarchyNode struct {
	Name     string           `json:"name"`
	Self     uint64           `json:"self"`
	Total    uint64           `json:"total"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// Hierarchy converts the tree into its hierarchical form.
func (t *Tree) Hierarchy() *HierarchyNode {
	return t.hierarchy(rootID)
}

func (t *Tree) hierarchy(id nodeID) *HierarchyNode {
	n := &t.nodes[id]
	h := &HierarchyNode{
		Name:  n.name,
		Self:  t.exclusive(id),
		Total: n.total,
	}
	if id == rootID {
		h.Name = HierarchyRootName
	}
	for _, child := range n.order {
		h.Children = append(h.Children, t.hierarchy(child))
	}
	return h
}

// WriteHierarchy emits the tree as indented JSON with a trailing newline.
func (t *Tree) WriteHierarchy(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Hierarchy()); err != nil {
		return err
	}
	return bw.Flush()
}
