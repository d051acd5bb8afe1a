package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/jamesainslie/sunburst/pkg/sunburst/polar"
)

// SegmentPath returns SVG path data for the ring segment between radii
// inner and outer and angles start and end (degrees, counter-clockwise from
// +X). center is in SVG coordinates, whose Y axis points down, so the
// segment is mirrored to keep angles counter-clockwise on screen.
//
// A zero inner radius gives a pie wedge; a span of 360 degrees gives a full
// ring.
func SegmentPath(center polar.Point, inner, outer, start, end float64) string {
	span := end - start
	if span <= 0 || outer <= 0 || inner >= outer {
		return ""
	}
	if span >= 360 {
		return ringPath(center, inner, outer)
	}

	large := 0
	if span > 180 {
		large = 1
	}

	var b pathBuilder
	p1 := screen(center, outer, start)
	p2 := screen(center, outer, end)
	b.move(p1)
	// Counter-clockwise in a Y-down plane is sweep-flag 0.
	b.arc(outer, large, 0, p2)
	if inner > 0 {
		b.line(screen(center, inner, end))
		b.arc(inner, large, 1, screen(center, inner, start))
	} else {
		b.line(center)
	}
	b.close()
	return b.String()
}

// ringPath draws a full annulus as two half circles per edge, with the
// inner edge reversed so the nonzero fill rule leaves a hole.
func ringPath(center polar.Point, inner, outer float64) string {
	var b pathBuilder
	b.move(screen(center, outer, 0))
	b.arc(outer, 0, 0, screen(center, outer, 180))
	b.arc(outer, 0, 0, screen(center, outer, 0))
	b.close()
	if inner > 0 {
		b.move(screen(center, inner, 0))
		b.arc(inner, 0, 1, screen(center, inner, 180))
		b.arc(inner, 0, 1, screen(center, inner, 0))
		b.close()
	}
	return b.String()
}

// screen converts a polar coordinate around center to Y-down space.
func screen(center polar.Point, r, deg float64) polar.Point {
	p := polar.FromPolar(polar.Point{}, r, deg)
	return polar.Point{X: center.X + p.X, Y: center.Y - p.Y}
}

type pathBuilder struct {
	strings.Builder
}

func (b *pathBuilder) move(p polar.Point) {
	b.cmd("M")
	b.point(p)
}

func (b *pathBuilder) line(p polar.Point) {
	b.cmd("L")
	b.point(p)
}

func (b *pathBuilder) arc(r float64, large, sweep int, to polar.Point) {
	b.cmd("A")
	b.num(r)
	b.WriteByte(' ')
	b.num(r)
	b.WriteString(" 0 ")
	b.WriteString(strconv.Itoa(large))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(sweep))
	b.WriteByte(' ')
	b.point(to)
}

func (b *pathBuilder) close() {
	b.cmd("Z")
}

func (b *pathBuilder) cmd(c string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(c)
}

func (b *pathBuilder) point(p polar.Point) {
	b.num(p.X)
	b.WriteByte(' ')
	b.num(p.Y)
}

func (b *pathBuilder) num(v float64) {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // no "-0.00"
	}
	b.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
}
