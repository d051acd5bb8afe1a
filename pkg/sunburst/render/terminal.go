package render

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/sunburst/pkg/sunburst/polar"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
)

// cellAspect is the height of a terminal cell in units of its width.
const cellAspect = 2.0

// Canvas maps a grid of terminal cells onto layout space. Cells are taken
// to be twice as tall as wide so the sunburst stays round.
type Canvas struct {
	Cols, Rows int
	Painter    radial.Painter
}

// Center returns the layout center in cell-width units, Y up.
func (c Canvas) Center() polar.Point {
	return polar.Point{X: float64(c.Cols) / 2, Y: float64(c.Rows) * cellAspect / 2}
}

// MaxRadius returns the largest radius that fits the grid.
func (c Canvas) MaxRadius() float64 {
	return min(float64(c.Cols)/2, float64(c.Rows)*cellAspect/2)
}

// PointAt returns the layout-space point at the middle of a cell.
func (c Canvas) PointAt(col, row int) polar.Point {
	return polar.Point{
		X: float64(col) + 0.5,
		Y: (float64(c.Rows) - float64(row) - 0.5) * cellAspect,
	}
}

// ItemAtCell returns the item drawn in the given cell, or nil.
func ItemAtCell[T comparable](root *radial.Item[T], c Canvas, col, row int) *radial.Item[T] {
	if col < 0 || row < 0 || col >= c.Cols || row >= c.Rows {
		return nil
	}
	return radial.ItemAt(root, c.Painter, c.PointAt(col, row), c.Center(), c.MaxRadius())
}

// RasterOptions controls Rasterize.
type RasterOptions[T comparable] struct {
	Colorer radial.Colorer[T]

	// Highlight is drawn lighter, together with its descendants.
	Highlight *radial.Item[T]
}

// Rasterize paints the layout into c.Rows lines of c.Cols cells using
// background colors. Cells outside every arc stay blank.
func Rasterize[T comparable](root *radial.Item[T], c Canvas, opts RasterOptions[T]) string {
	if c.Cols <= 0 || c.Rows <= 0 || root == nil {
		return ""
	}
	if opts.Colorer == nil {
		opts.Colorer = AngleColorer[T]{}
	}

	cache := map[*radial.Item[T]]string{}
	colorOf := func(it *radial.Item[T]) string {
		if hex, ok := cache[it]; ok {
			return hex
		}
		var col color.Color = ItemColor(opts.Colorer, it, c.Painter.MaxLevels)
		if opts.Highlight != nil && within(it, opts.Highlight) {
			col = Lighten(col, 0.45)
		}
		hex := Hex(col)
		cache[it] = hex
		return hex
	}

	var out strings.Builder
	for row := range c.Rows {
		if row > 0 {
			out.WriteByte('\n')
		}
		run, runLen := "", 0
		flush := func() {
			if runLen == 0 {
				return
			}
			cells := strings.Repeat(" ", runLen)
			if run != "" {
				cells = lipgloss.NewStyle().Background(lipgloss.Color(run)).Render(cells)
			}
			out.WriteString(cells)
			runLen = 0
		}
		for col := range c.Cols {
			hex := ""
			if it := ItemAtCell(root, c, col, row); it != nil {
				hex = colorOf(it)
			}
			if hex != run {
				flush()
				run = hex
			}
			runLen++
		}
		flush()
	}
	return out.String()
}

// within reports whether it is anc or one of its descendants.
func within[T comparable](it, anc *radial.Item[T]) bool {
	for cur := it; cur != nil; cur = cur.Parent {
		if cur == anc {
			return true
		}
	}
	return false
}
