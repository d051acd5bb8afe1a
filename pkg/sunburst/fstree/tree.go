// Package fstree holds the scanned file/directory hierarchy.
//
// A Tree is an arena of nodes addressed by NodeID. The arena owns every node;
// a node's Parent is a plain index used for upward navigation only. Trees are
// assembled with a Builder and are read-only afterwards, so they can be shared
// freely between goroutines once the scanner hands them over.
package fstree

import (
	"path/filepath"
	"sort"
)

// NodeID identifies a node within a Tree.
type NodeID int32

// NoNode is the parent of the root and the result of failed lookups.
const NoNode NodeID = -1

// Kind classifies an entry.
type Kind uint8

const (
	// KindFile is a regular file, symlink or other non-directory entry.
	KindFile Kind = iota
	// KindDir is a directory that was descended into.
	KindDir
	// KindMount is a directory on a different device than its parent.
	// It is not descended into and always has size 0.
	KindMount
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindMount:
		return "mount"
	default:
		return "unknown"
	}
}

// IsDir reports whether entries of this kind are directories.
func (k Kind) IsDir() bool {
	return k == KindDir || k == KindMount
}

// Entry is the public view of one node.
type Entry struct {
	// Path is the full path of the entry.
	Path string `json:"path"`

	// Size is the byte count. For directories it is the sum of all
	// descendant file sizes, fixed when the directory finished scanning.
	Size uint64 `json:"size"`

	Kind   Kind   `json:"kind"`
	Parent NodeID `json:"-"`
}

type node struct {
	Entry
	children []NodeID
	sealed   bool
}

// Tree is an immutable file/directory hierarchy.
type Tree struct {
	nodes []node
	index map[string]NodeID
}

// Root returns the root directory.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of entries, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Valid reports whether id addresses a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Entry returns the entry for id. It panics if id is out of range.
func (t *Tree) Entry(id NodeID) Entry {
	return t.nodes[id].Entry
}

// Size is shorthand for Entry(id).Size.
func (t *Tree) Size(id NodeID) uint64 {
	return t.nodes[id].Size
}

// Name returns the base name of the entry.
func (t *Tree) Name(id NodeID) string {
	return filepath.Base(t.nodes[id].Path)
}

// Children returns the children of id in scan order.
// The returned slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].Parent
}

// Depth returns the number of ancestors of id (root = 0).
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		depth++
	}
	return depth
}

// Lookup returns the node with the given path, or NoNode.
func (t *Tree) Lookup(path string) NodeID {
	if id, ok := t.index[filepath.Clean(path)]; ok {
		return id
	}
	return NoNode
}

// FileType returns a human-readable type name for the entry.
func (t *Tree) FileType(id NodeID) string {
	switch t.nodes[id].Kind {
	case KindDir:
		return "Directory"
	case KindMount:
		return "Mount"
	default:
		return DetectFileType(t.nodes[id].Path)
	}
}

// Walk visits id and its descendants in depth-first pre-order.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, child := range t.nodes[id].children {
		t.walk(child, depth+1, fn)
	}
}

// Largest returns up to n entries of the given kind under id (id excluded),
// sorted by size descending and then by path.
func (t *Tree) Largest(id NodeID, n int, kind Kind) []NodeID {
	var found []NodeID
	t.Walk(id, func(cur NodeID, _ int) bool {
		if cur != id && t.nodes[cur].Kind == kind {
			found = append(found, cur)
		}
		return true
	})

	sort.Slice(found, func(i, j int) bool {
		a, b := t.nodes[found[i]], t.nodes[found[j]]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Path < b.Path
	})

	if n > 0 && len(found) > n {
		found = found[:n]
	}
	return found
}

// Counts returns the number of files and directories under id, id included.
func (t *Tree) Counts(id NodeID) (files, dirs int) {
	t.Walk(id, func(cur NodeID, _ int) bool {
		if t.nodes[cur].Kind.IsDir() {
			dirs++
		} else {
			files++
		}
		return true
	})
	return files, dirs
}
