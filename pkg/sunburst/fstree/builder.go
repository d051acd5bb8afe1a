package fstree

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Builder assembles a Tree. It is not safe for concurrent use; the scanner
// drives it from its single worker goroutine.
type Builder struct {
	tree *Tree
}

// NewBuilder returns a builder whose tree contains only the root directory.
func NewBuilder(rootPath string) *Builder {
	root := filepath.Clean(rootPath)
	t := &Tree{
		nodes: []node{{Entry: Entry{Path: root, Kind: KindDir, Parent: NoNode}}},
		index: map[string]NodeID{root: 0},
	}
	return &Builder{tree: t}
}

// Root returns the root directory id.
func (b *Builder) Root() NodeID {
	return 0
}

// AddFile appends a file of the given size to parent.
func (b *Builder) AddFile(parent NodeID, path string, size uint64) NodeID {
	return b.add(parent, Entry{Path: path, Size: size, Kind: KindFile})
}

// AddDir appends an empty directory to parent. Its size stays 0 until Seal.
func (b *Builder) AddDir(parent NodeID, path string) NodeID {
	return b.add(parent, Entry{Path: path, Kind: KindDir})
}

// AddMount appends a mount boundary to parent. Mounts are born sealed.
func (b *Builder) AddMount(parent NodeID, path string) NodeID {
	id := b.add(parent, Entry{Path: path, Kind: KindMount})
	b.tree.nodes[id].sealed = true
	return id
}

func (b *Builder) add(parent NodeID, e Entry) NodeID {
	p := &b.tree.nodes[parent]
	if !p.Kind.IsDir() {
		panic(fmt.Sprintf("fstree: cannot add %q under non-directory %q", e.Path, p.Path))
	}
	if p.sealed {
		panic(fmt.Sprintf("fstree: cannot add %q under sealed directory %q", e.Path, p.Path))
	}

	e.Path = filepath.Clean(e.Path)
	e.Parent = parent
	id := NodeID(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, node{Entry: e})
	// p may be stale after append.
	b.tree.nodes[parent].children = append(b.tree.nodes[parent].children, id)
	b.tree.index[e.Path] = id
	return id
}

// Seal fixes the size of dir as the sum of its children's sizes and returns
// it. Children that are directories must already be sealed. Sealing twice
// panics.
func (b *Builder) Seal(dir NodeID) uint64 {
	n := &b.tree.nodes[dir]
	if !n.Kind.IsDir() {
		panic(fmt.Sprintf("fstree: cannot seal non-directory %q", n.Path))
	}
	if n.sealed {
		panic(fmt.Sprintf("fstree: directory %q sealed twice", n.Path))
	}

	var total uint64
	for _, child := range n.children {
		c := &b.tree.nodes[child]
		if c.Kind.IsDir() && !c.sealed {
			panic(fmt.Sprintf("fstree: sealing %q before child %q", n.Path, c.Path))
		}
		total += c.Size
	}
	n.Size = total
	n.sealed = true
	return total
}

// Sealed reports whether dir's size has been fixed.
func (b *Builder) Sealed(dir NodeID) bool {
	return b.tree.nodes[dir].sealed
}

// Tree seals every directory that is still open, deepest first, and returns
// the finished tree. The builder must not be used afterwards.
//
// Open directories exist only when a scan stopped early; sealing them keeps
// the size invariant true for partial results.
func (b *Builder) Tree() *Tree {
	b.sealOpen(b.Root())
	t := b.tree
	b.tree = nil
	return t
}

func (b *Builder) sealOpen(id NodeID) {
	n := &b.tree.nodes[id]
	if n.sealed || !n.Kind.IsDir() {
		return
	}
	for _, child := range n.children {
		b.sealOpen(child)
	}
	b.Seal(id)
}

// JoinChild returns the path of name inside dir without re-cleaning dir.
func JoinChild(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}
