package radial

// Item is one arc of a layout.
//
// Start and End are degrees relative to the root's full circle with
// 0 <= Start < End <= 360. The span is half-open: Start belongs to the item,
// End belongs to the next sibling.
type Item[T comparable] struct {
	Value  T
	Weight float64
	Start  float64
	End    float64
	Level  int

	// Parent is nil for the root. It is for navigation only.
	Parent   *Item[T]
	Children []*Item[T]
}

// MidAngle returns the angle halfway through the arc.
func (it *Item[T]) MidAngle() float64 {
	return (it.Start + it.End) / 2
}

// Span returns the angular width of the arc.
func (it *Item[T]) Span() float64 {
	return it.End - it.Start
}

// AngleFraction returns MidAngle as a fraction of the full circle.
func (it *Item[T]) AngleFraction() float64 {
	return it.MidAngle() / 360
}

// LevelFraction returns the item's ring as a fraction of maxLevels.
func (it *Item[T]) LevelFraction(maxLevels int) float64 {
	if maxLevels <= 0 {
		return 0
	}
	f := float64(it.Level) / float64(maxLevels)
	if f > 1 {
		f = 1
	}
	return f
}

// Contains reports whether deg falls inside [Start, End).
// deg is expected to be normalized to [0, 360).
func (it *Item[T]) Contains(deg float64) bool {
	return deg >= it.Start && deg < it.End
}

// IsLeaf reports whether the item has no laid-out children.
func (it *Item[T]) IsLeaf() bool {
	return len(it.Children) == 0
}

// Walk visits the item and its descendants in depth-first pre-order.
// Returning false from fn skips the item's children.
func (it *Item[T]) Walk(fn func(*Item[T]) bool) {
	if !fn(it) {
		return
	}
	for _, c := range it.Children {
		c.Walk(fn)
	}
}

// Count returns the number of items in the subtree rooted at it.
func (it *Item[T]) Count() int {
	n := 0
	it.Walk(func(*Item[T]) bool {
		n++
		return true
	})
	return n
}

// Path returns the chain of values from the root down to it.
func (it *Item[T]) Path() []T {
	var rev []T
	for cur := it; cur != nil; cur = cur.Parent {
		rev = append(rev, cur.Value)
	}
	out := make([]T, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}
