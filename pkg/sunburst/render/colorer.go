// Package render draws radial layouts as SVG images and terminal cells.
package render

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/lucasb-eyer/go-colorful"
)

// Colorer names accepted by NewColorer.
const (
	ColorerAngle = "angle"
	ColorerType  = "type"
	ColorerName  = "name"
)

// shade maps a hue in degrees and a level fraction to a color. Inner rings
// are deeper, outer rings paler.
func shade(hue, levelFrac float64) colorful.Color {
	chroma := 0.6 - 0.3*levelFrac
	light := 0.55 + 0.3*levelFrac
	return colorful.Hcl(hue, chroma, light).Clamped()
}

// AngleColorer colors an arc by its position around the circle, so
// neighbours in the tree get neighbouring hues.
type AngleColorer[T comparable] struct{}

// Color implements radial.Colorer.
func (AngleColorer[T]) Color(_ *radial.Item[T], angleFrac, levelFrac float64) color.Color {
	return shade(360*angleFrac, levelFrac)
}

// typeHues fixes the hue of the common type groups.
var typeHues = map[string]float64{
	"Code":     140,
	"Document": 60,
	"Data":     200,
	"Image":    320,
	"Video":    0,
	"Audio":    280,
	"Archive":  30,
	"Binary":   240,
}

// TypeColorer colors files by type group. Directories are neutral.
type TypeColorer struct {
	tree *fstree.Tree
}

// NewTypeColorer returns a TypeColorer for entries of t.
func NewTypeColorer(t *fstree.Tree) *TypeColorer {
	return &TypeColorer{tree: t}
}

// Color implements radial.Colorer.
func (c *TypeColorer) Color(item *radial.Item[fstree.NodeID], _, levelFrac float64) color.Color {
	kind := c.tree.Entry(item.Value).Kind
	if kind.IsDir() {
		g := 0.45 + 0.35*levelFrac
		return colorful.Color{R: g, G: g, B: g}
	}
	name := c.tree.FileType(item.Value)
	hue, ok := typeHues[name]
	if !ok {
		hue = hashHue(name)
	}
	return shade(hue, levelFrac)
}

// NameColorer colors entries by a hash of their base name, so equally named
// files look alike wherever they are.
type NameColorer struct {
	tree *fstree.Tree
}

// NewNameColorer returns a NameColorer for entries of t.
func NewNameColorer(t *fstree.Tree) *NameColorer {
	return &NameColorer{tree: t}
}

// Color implements radial.Colorer.
func (c *NameColorer) Color(item *radial.Item[fstree.NodeID], _, levelFrac float64) color.Color {
	return shade(hashHue(filepath.Base(c.tree.Entry(item.Value).Path)), levelFrac)
}

func hashHue(s string) float64 {
	return float64(xxhash.Sum64String(s) % 360)
}

var (
	_ radial.Colorer[fstree.NodeID] = AngleColorer[fstree.NodeID]{}
	_ radial.Colorer[fstree.NodeID] = (*TypeColorer)(nil)
	_ radial.Colorer[fstree.NodeID] = (*NameColorer)(nil)
)

// NewColorer returns the named colorer for entries of t.
func NewColorer(name string, t *fstree.Tree) (radial.Colorer[fstree.NodeID], error) {
	switch name {
	case ColorerAngle, "":
		return AngleColorer[fstree.NodeID]{}, nil
	case ColorerType:
		return NewTypeColorer(t), nil
	case ColorerName:
		return NewNameColorer(t), nil
	}
	return nil, fmt.Errorf("unknown colorer %q", name)
}

// ItemColor applies c to item with the item's own fractions.
func ItemColor[T comparable](c radial.Colorer[T], item *radial.Item[T], maxLevels int) color.Color {
	return c.Color(item, item.AngleFraction(), item.LevelFraction(maxLevels))
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Clamped().Hex()
}

// Lighten blends c toward white by t in [0, 1].
func Lighten(c color.Color, t float64) color.Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	return cf.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, t).Clamped()
}
