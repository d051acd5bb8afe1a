package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/polar"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
)

// chartChrome is the number of rows around the chart: the header above it
// and the info, status and key lines below.
const chartChrome = 4

// ChartModel draws a laid-out tree and tracks the arc under the pointer.
// The layout is rebuilt only when the zoom root changes; resizing just
// repaints it.
type ChartModel struct {
	tree    *fstree.Tree
	source  *fstree.Source
	painter radial.Painter
	colorer radial.Colorer[fstree.NodeID]

	layout *radial.Item[fstree.NodeID]
	hover  *radial.Item[fstree.NodeID]

	// zoom holds the roots zoomed out of, innermost last.
	zoom []fstree.NodeID

	// counts caches file and directory counts per directory.
	counts map[fstree.NodeID][2]int

	width  int
	height int
}

// NewChartModel lays out tree from its root.
func NewChartModel(tree *fstree.Tree, p radial.Painter, c radial.Colorer[fstree.NodeID]) ChartModel {
	m := ChartModel{
		tree:    tree,
		source:  fstree.NewSource(tree),
		painter: p,
		colorer: c,
		counts:  map[fstree.NodeID][2]int{},
		width:   80,
		height:  24,
	}
	m.rebuild()
	return m
}

func (m *ChartModel) rebuild() {
	m.layout = radial.Build[fstree.NodeID](m.source, m.painter)
	m.hover = nil
}

// SetDimensions sets the full screen size.
func (m *ChartModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// Canvas returns the cell grid the chart is painted on.
func (m ChartModel) Canvas() render.Canvas {
	return render.Canvas{
		Cols:    max(m.width, 1),
		Rows:    max(m.height-chartChrome, 1),
		Painter: m.painter,
	}
}

// Root returns the node at the center of the chart.
func (m ChartModel) Root() fstree.NodeID {
	return m.source.Root()
}

// Layout returns the current layout.
func (m ChartModel) Layout() *radial.Item[fstree.NodeID] {
	return m.layout
}

// Hovered returns the node under the pointer.
func (m ChartModel) Hovered() (fstree.NodeID, bool) {
	if m.hover == nil {
		return fstree.NoNode, false
	}
	return m.hover.Value, true
}

// HoverCell moves the pointer to a chart cell. Cells outside every arc
// clear the hover.
func (m *ChartModel) HoverCell(col, row int) {
	m.hover = render.ItemAtCell(m.layout, m.Canvas(), col, row)
}

// InHole reports whether a chart cell lies in the central disc, which
// stands for the current root.
func (m ChartModel) InHole(col, row int) bool {
	c := m.Canvas()
	_, hole := m.painter.Ring(0, c.MaxRadius())
	return polar.Distance(c.PointAt(col, row), c.Center()) < hole
}

// Step moves the hover with the keyboard: dx cycles through siblings and
// dy moves outward (positive) or inward (negative) one ring.
func (m *ChartModel) Step(dx, dy int) {
	if m.hover == nil {
		if len(m.layout.Children) > 0 {
			m.hover = m.layout.Children[0]
		}
		return
	}
	switch {
	case dy > 0 && len(m.hover.Children) > 0:
		m.hover = m.hover.Children[0]
	case dy < 0 && m.hover.Parent != nil && m.hover.Parent != m.layout:
		m.hover = m.hover.Parent
	case dx != 0 && m.hover.Parent != nil:
		sibs := m.hover.Parent.Children
		for i, s := range sibs {
			if s == m.hover {
				m.hover = sibs[(i+dx+len(sibs))%len(sibs)]
				break
			}
		}
	}
}

// ZoomIn re-roots the chart at id. Only directories with children can be
// zoomed into.
func (m *ChartModel) ZoomIn(id fstree.NodeID) bool {
	if id == m.Root() || !m.tree.Entry(id).Kind.IsDir() || len(m.tree.Children(id)) == 0 {
		return false
	}
	m.zoom = append(m.zoom, m.Root())
	m.source = m.source.At(id)
	m.rebuild()
	return true
}

// ZoomOut returns to the previous root.
func (m *ChartModel) ZoomOut() bool {
	if len(m.zoom) == 0 {
		return false
	}
	prev := m.zoom[len(m.zoom)-1]
	m.zoom = m.zoom[:len(m.zoom)-1]
	m.source = m.source.At(prev)
	m.rebuild()
	return true
}

// View renders the chart area and the info line below it.
func (m ChartModel) View() string {
	var b strings.Builder
	b.WriteString(render.Rasterize(m.layout, m.Canvas(), render.RasterOptions[fstree.NodeID]{
		Colorer:   m.colorer,
		Highlight: m.hover,
	}))
	b.WriteString("\n")
	b.WriteString(m.info())
	return b.String()
}

// info describes the hovered entry, or the root when nothing is hovered.
func (m ChartModel) info() string {
	id := m.Root()
	if m.hover != nil {
		id = m.hover.Value
	}
	e := m.tree.Entry(id)
	total := m.tree.Size(m.Root())

	pct := 0.0
	if total > 0 {
		pct = float64(e.Size) * 100 / float64(total)
	}
	detail := fmt.Sprintf("  %s  %.1f%%  %s", humanize.IBytes(e.Size), pct, m.tree.FileType(id))
	if e.Kind.IsDir() {
		n, ok := m.counts[id]
		if !ok {
			files, dirs := m.tree.Counts(id)
			n = [2]int{files, dirs - 1}
			m.counts[id] = n
		}
		detail += fmt.Sprintf("  %s files  %s dirs", humanize.Comma(int64(n[0])), humanize.Comma(int64(n[1])))
	}

	room := max(m.width-len(detail)-2, 10)
	return " " + pathStyle.Render(truncatePath(e.Path, room)) + sizeStyle.Render(detail)
}
