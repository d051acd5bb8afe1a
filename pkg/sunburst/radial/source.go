// Package radial lays out a weighted hierarchy as nested rings of arcs
// (a sunburst) and maps points back to the arc under them.
//
// The engine is synchronous and keeps no state between calls: Build walks a
// Source and returns a fresh tree of Items, so it is cheap to rebuild whenever
// the data or the Painter parameters change.
package radial

import "image/color"

// Source describes a finite, acyclic, single-rooted weighted tree.
//
// Items are identified by values of T. Weights must be non-negative; a
// negative weight or a child that repeats one of its ancestors is a broken
// contract and makes Build panic.
type Source[T comparable] interface {
	// Root returns the item the layout starts from.
	Root() T

	// NumChildren returns the number of children of item.
	NumChildren(item T) int

	// Child returns the index-th child of item, 0 <= index < NumChildren(item).
	Child(item T, index int) T

	// Weight returns the weight of item.
	Weight(item T) float64
}

// Colorer picks a color for an arc. angleFrac is the arc's mid angle as a
// fraction of the full circle and levelFrac its ring as a fraction of the
// painter's MaxLevels, both in [0, 1].
type Colorer[T comparable] interface {
	Color(item *Item[T], angleFrac, levelFrac float64) color.Color
}

// ColorerFunc adapts a function to the Colorer interface.
type ColorerFunc[T comparable] func(item *Item[T], angleFrac, levelFrac float64) color.Color

// Color calls f.
func (f ColorerFunc[T]) Color(item *Item[T], angleFrac, levelFrac float64) color.Color {
	return f(item, angleFrac, levelFrac)
}
