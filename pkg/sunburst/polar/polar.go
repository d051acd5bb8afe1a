// Package polar converts between cartesian and polar coordinates.
//
// All angles are in degrees. 0° points along +X and angles grow
// counter-clockwise in a Y-up plane, so a point at 90° lies directly above
// the center. Renderers that draw into a Y-down surface (SVG, terminal cells)
// must flip Y before converting.
package polar

import "math"

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FromPolar returns the point at the given radius and angle around center.
func FromPolar(center Point, radius, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y + radius*math.Sin(rad),
	}
}

// ToPolar returns the radius and angle of p relative to center.
// The angle is always in [0, 360). A point at the center has radius 0 and
// angle 0.
func ToPolar(p, center Point) (radius, deg float64) {
	dx := p.X - center.X
	dy := p.Y - center.Y
	if dx == 0 && dy == 0 {
		return 0, 0
	}

	radius = math.Hypot(dx, dy)
	deg = Normalize(math.Atan2(dy, dx) * 180 / math.Pi)
	return radius, deg
}

// Normalize maps a finite angle into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds up to exactly 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
