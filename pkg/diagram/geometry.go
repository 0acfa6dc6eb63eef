// Geometric primitives for the diagram engine.
// Blocks are axis-aligned rectangles; wires are orthogonal polylines.

package diagram

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Manhattan returns the Manhattan length of p taken as a vector.
func (p Point) Manhattan() float64 {
	return math.Abs(p.X) + math.Abs(p.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y float64 // Top-left
	W, H float64 // Full width and height
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// ClampInside returns the position of a w×h rectangle moved the minimal
// distance so that it lies within r. Rectangles larger than r are pinned
// to r's top-left corner.
func (r Rect) ClampInside(pos Point, w, h float64) Point {
	x := math.Min(math.Max(pos.X, r.X), r.X+r.W-w)
	y := math.Min(math.Max(pos.Y, r.Y), r.Y+r.H-h)
	if x < r.X {
		x = r.X
	}
	if y < r.Y {
		y = r.Y
	}
	return Point{x, y}
}

// Direction is an axis-aligned approach direction, used by the router as
// the outward normal of the port a wire leaves from or arrives at.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Horizontal reports whether the direction lies on the X axis.
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}
