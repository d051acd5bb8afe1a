package radial

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jamesainslie/sunburst/pkg/sunburst/polar"
)

// Default layout parameters.
const (
	DefaultMaxLevels         = 6
	DefaultMinPaintAngle     = 1.0
	DefaultMinRadiusFraction = 0.1
	DefaultMaxRadiusFraction = 0.9
)

// ErrInvalidPainter is returned by Validate for out-of-range parameters.
var ErrInvalidPainter = errors.New("invalid layout parameters")

// Painter holds the parameters shared by layout, hit testing and rendering.
type Painter struct {
	// MaxLevels is the number of rings below the root. Items deeper than
	// this are not laid out.
	MaxLevels int `mapstructure:"max_levels" yaml:"max_levels" json:"max_levels"`

	// MinPaintAngle is the narrowest arc, in degrees, whose children are
	// laid out. Narrower arcs are kept but not expanded.
	MinPaintAngle float64 `mapstructure:"min_paint_angle" yaml:"min_paint_angle" json:"min_paint_angle"`

	// MinRadiusFraction and MaxRadiusFraction bound the rings as fractions
	// of the maximum radius. The hole inside the inner bound belongs to the
	// root and is not hit-testable.
	MinRadiusFraction float64 `mapstructure:"min_radius_fraction" yaml:"min_radius_fraction" json:"min_radius_fraction"`
	MaxRadiusFraction float64 `mapstructure:"max_radius_fraction" yaml:"max_radius_fraction" json:"max_radius_fraction"`
}

// DefaultPainter returns the default parameters.
func DefaultPainter() Painter {
	return Painter{
		MaxLevels:         DefaultMaxLevels,
		MinPaintAngle:     DefaultMinPaintAngle,
		MinRadiusFraction: DefaultMinRadiusFraction,
		MaxRadiusFraction: DefaultMaxRadiusFraction,
	}
}

// Validate reports whether the parameters describe a drawable layout.
func (p Painter) Validate() error {
	switch {
	case p.MaxLevels < 1:
		return fmt.Errorf("%w: max levels %d < 1", ErrInvalidPainter, p.MaxLevels)
	case p.MinPaintAngle < 0 || math.IsNaN(p.MinPaintAngle):
		return fmt.Errorf("%w: min paint angle %v", ErrInvalidPainter, p.MinPaintAngle)
	case p.MinRadiusFraction < 0 || p.MaxRadiusFraction > 1:
		return fmt.Errorf("%w: radius fractions must be within [0, 1]", ErrInvalidPainter)
	case !(p.MinRadiusFraction < p.MaxRadiusFraction):
		return fmt.Errorf("%w: min radius fraction %v >= max %v",
			ErrInvalidPainter, p.MinRadiusFraction, p.MaxRadiusFraction)
	}
	return nil
}

// Ring returns the inner and outer radius of the band occupied by level.
// Level 0 (the root) is the central hole.
func (p Painter) Ring(level int, maxRadius float64) (inner, outer float64) {
	rMin := p.MinRadiusFraction * maxRadius
	if level <= 0 {
		return 0, rMin
	}
	w := p.ringWidth(maxRadius)
	return rMin + float64(level-1)*w, rMin + float64(level)*w
}

// LevelAt returns the ring index under radius r, or 0 when r lies in the
// central hole or beyond the outermost ring.
func (p Painter) LevelAt(r, maxRadius float64) int {
	rMin := p.MinRadiusFraction * maxRadius
	rMax := p.MaxRadiusFraction * maxRadius
	if r < rMin || r > rMax || rMax <= rMin {
		return 0
	}
	level := int((r-rMin)/p.ringWidth(maxRadius)) + 1
	if level > p.MaxLevels {
		level = p.MaxLevels
	}
	return level
}

func (p Painter) ringWidth(maxRadius float64) float64 {
	return (p.MaxRadiusFraction - p.MinRadiusFraction) * maxRadius / float64(p.MaxLevels)
}

// Build lays out src. The root spans the full circle at level 0; each
// item's children split its span in proportion to their weights, in source
// order. Children with zero weight occupy no angle and are omitted.
//
// Build panics if p is invalid or src breaks the Source contract.
func Build[T comparable](src Source[T], p Painter) *Item[T] {
	if err := p.Validate(); err != nil {
		panic(err)
	}

	rootValue := src.Root()
	root := &Item[T]{
		Value:  rootValue,
		Weight: checkedWeight(src, rootValue),
		Start:  0,
		End:    360,
		Level:  0,
	}

	b := &layoutBuilder[T]{
		src:    src,
		p:      p,
		onPath: map[T]struct{}{rootValue: {}},
	}
	b.expand(root)
	return root
}

type layoutBuilder[T comparable] struct {
	src    Source[T]
	p      Painter
	onPath map[T]struct{}
}

func (b *layoutBuilder[T]) expand(parent *Item[T]) {
	if parent.Level >= b.p.MaxLevels {
		return
	}

	n := b.src.NumChildren(parent.Value)
	if n <= 0 {
		return
	}

	values := make([]T, n)
	weights := make([]float64, n)
	var total float64
	for i := range n {
		v := b.src.Child(parent.Value, i)
		if _, cyclic := b.onPath[v]; cyclic {
			panic(fmt.Sprintf("radial: source is cyclic: %v is its own ancestor", v))
		}
		values[i] = v
		weights[i] = checkedWeight(b.src, v)
		total += weights[i]
	}
	if total == 0 {
		return
	}

	span := parent.End - parent.Start
	start := parent.Start
	var cum float64
	parent.Children = make([]*Item[T], 0, n)
	for i := range n {
		cum += weights[i]
		end := parent.Start + span*cum/total
		if i == n-1 || end > parent.End {
			end = parent.End
		}
		if weights[i] == 0 || end <= start {
			continue
		}

		parent.Children = append(parent.Children, &Item[T]{
			Value:  values[i],
			Weight: weights[i],
			Start:  start,
			End:    end,
			Level:  parent.Level + 1,
			Parent: parent,
		})
		start = end
	}

	for _, child := range parent.Children {
		if child.Span() < b.p.MinPaintAngle {
			continue
		}
		b.onPath[child.Value] = struct{}{}
		b.expand(child)
		delete(b.onPath, child.Value)
	}
}

func checkedWeight[T comparable](src Source[T], v T) float64 {
	w := src.Weight(v)
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		panic(fmt.Sprintf("radial: invalid weight %v for %v", w, v))
	}
	return w
}

// ItemAt returns the item drawn under point when the layout rooted at root is
// painted around center with the given maximum radius, or nil if the point
// is in the central hole, outside the rings, or over an empty part of a ring.
func ItemAt[T comparable](root *Item[T], p Painter, point, center polar.Point, maxRadius float64) *Item[T] {
	if root == nil {
		return nil
	}

	r, deg := polar.ToPolar(point, center)
	level := p.LevelAt(r, maxRadius)
	if level == 0 {
		return nil
	}

	cur := root
	for cur.Level < level {
		cur = childAt(cur, deg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// childAt returns the child of it whose span contains deg. On a boundary
// the child starting there wins.
func childAt[T comparable](it *Item[T], deg float64) *Item[T] {
	i := sort.Search(len(it.Children), func(i int) bool {
		return it.Children[i].End > deg
	})
	if i < len(it.Children) && it.Children[i].Contains(deg) {
		return it.Children[i]
	}
	return nil
}

// Find returns the first item in pre-order whose value is v, or nil.
func Find[T comparable](root *Item[T], v T) *Item[T] {
	var found *Item[T]
	root.Walk(func(it *Item[T]) bool {
		if found != nil {
			return false
		}
		if it.Value == v {
			found = it
			return false
		}
		return true
	})
	return found
}
