package tui

import (
	"strings"
	"testing"

	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree is /r{a.go:10, b/{c.png:20, d.go:10}, e.txt:40}.
func sampleTree() *fstree.Tree {
	b := fstree.NewBuilder("/r")
	b.AddFile(b.Root(), "/r/a.go", 10)
	dir := b.AddDir(b.Root(), "/r/b")
	b.AddFile(dir, "/r/b/c.png", 20)
	b.AddFile(dir, "/r/b/d.go", 10)
	b.AddFile(b.Root(), "/r/e.txt", 40)
	return b.Tree()
}

// newChart returns a chart on an 80x40 cell canvas.
func newChart(t *testing.T) (ChartModel, *fstree.Tree) {
	t.Helper()
	tree := sampleTree()
	m := NewChartModel(tree, radial.DefaultPainter(), render.AngleColorer[fstree.NodeID]{})
	m.SetDimensions(80, 40+chartChrome)
	return m, tree
}

func hoveredName(t *testing.T, m ChartModel, tree *fstree.Tree) string {
	t.Helper()
	id, ok := m.Hovered()
	if !ok {
		return ""
	}
	return tree.Name(id)
}

func TestChartModel_HoverCell(t *testing.T) {
	m, tree := newChart(t)

	tests := []struct {
		name     string
		col, row int
		want     string
	}{
		{"first ring right", 48, 19, "a.go"},
		{"first ring up", 40, 17, "b"},
		{"second ring up", 40, 14, "c.png"},
		{"first ring down", 40, 22, "e.txt"},
		{"hole", 40, 20, ""},
		{"corner", 0, 0, ""},
		{"off canvas", 200, 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.HoverCell(tt.col, tt.row)
			assert.Equal(t, tt.want, hoveredName(t, m, tree))
		})
	}

	assert.True(t, m.InHole(40, 20))
	assert.False(t, m.InHole(48, 19))
}

func TestChartModel_Zoom(t *testing.T) {
	m, tree := newChart(t)
	b := tree.Lookup("/r/b")

	assert.False(t, m.ZoomOut(), "nothing to zoom out of")
	assert.False(t, m.ZoomIn(tree.Lookup("/r/a.go")), "files cannot be zoomed into")
	assert.False(t, m.ZoomIn(tree.Root()))

	require.True(t, m.ZoomIn(b))
	assert.Equal(t, b, m.Root())
	require.Len(t, m.Layout().Children, 2)
	assert.Equal(t, "c.png", tree.Name(m.Layout().Children[0].Value))
	assert.InDelta(t, 240.0, m.Layout().Children[0].End, 1e-9)

	// The first ring now belongs to b's children.
	m.HoverCell(48, 19)
	assert.Equal(t, "c.png", hoveredName(t, m, tree))

	require.True(t, m.ZoomOut())
	assert.Equal(t, tree.Root(), m.Root())
	_, ok := m.Hovered()
	assert.False(t, ok, "zooming clears the hover")
	assert.False(t, m.ZoomOut())
}

func TestChartModel_Step(t *testing.T) {
	m, tree := newChart(t)

	steps := []struct {
		dx, dy int
		want   string
	}{
		{1, 0, "a.go"},
		{1, 0, "b"},
		{0, 1, "c.png"},
		{1, 0, "d.go"},
		{0, -1, "b"},
		{0, -1, "b"},
		{-1, 0, "a.go"},
		{-1, 0, "e.txt"},
		{0, 1, "e.txt"},
	}
	for i, s := range steps {
		m.Step(s.dx, s.dy)
		assert.Equal(t, s.want, hoveredName(t, m, tree), "step %d", i)
	}
}

func TestChartModel_View(t *testing.T) {
	m, _ := newChart(t)

	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 41)
	assert.Contains(t, lines[40], "/r")
	assert.Contains(t, lines[40], "80 B")
	assert.Contains(t, lines[40], "100.0%")
	assert.Contains(t, lines[40], "4 files")

	m.HoverCell(40, 22)
	assert.Contains(t, m.View(), "50.0%")
}

func TestChartModel_CanvasMinimum(t *testing.T) {
	m, _ := newChart(t)
	m.SetDimensions(0, 2)

	c := m.Canvas()
	assert.Equal(t, 1, c.Cols)
	assert.Equal(t, 1, c.Rows)
}
