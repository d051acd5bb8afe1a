package fstree

import "github.com/jamesainslie/sunburst/pkg/sunburst/radial"

// Source exposes a Tree to the radial layout engine, weighting each entry by
// its byte size. A Source may be rooted at any directory of the tree, which
// is how zooming into a subdirectory is done.
type Source struct {
	tree *Tree
	root NodeID
}

var _ radial.Source[NodeID] = (*Source)(nil)

// NewSource returns a source rooted at the tree root.
func NewSource(t *Tree) *Source {
	return &Source{tree: t, root: t.Root()}
}

// At returns a source over the same tree rooted at id.
func (s *Source) At(id NodeID) *Source {
	return &Source{tree: s.tree, root: id}
}

// Tree returns the underlying tree.
func (s *Source) Tree() *Tree {
	return s.tree
}

// Root returns the node the layout starts from.
func (s *Source) Root() NodeID {
	return s.root
}

// NumChildren returns the number of children of id.
func (s *Source) NumChildren(id NodeID) int {
	return len(s.tree.nodes[id].children)
}

// Child returns the index-th child of id.
func (s *Source) Child(id NodeID, index int) NodeID {
	return s.tree.nodes[id].children[index]
}

// Weight returns the size of id in bytes.
func (s *Source) Weight(id NodeID) float64 {
	return float64(s.tree.nodes[id].Size)
}
