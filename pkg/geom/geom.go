// Package geom provides the small set of 2D value types shared by the board
// packages: points, axis-aligned rectangles and a few distance helpers.
//
// All types are plain values. Nothing in this package allocates or keeps
// state, so the functions are safe to call from anywhere.
package geom

import "math"

// Point is a position in either screen or canvas space. Which space a point
// lives in is decided by the caller; see package viewport for conversions.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// Mid returns the midpoint of the segment a-b.
func Mid(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Valid reports whether the rectangle has a positive area.
func (r Rect) Valid() bool { return r.W > 0 && r.H > 0 }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Center returns the centre of the rectangle.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether r and s overlap.
func (r Rect) Intersects(s Rect) bool {
	return r.X < s.X+s.W && r.X+r.W > s.X && r.Y < s.Y+s.H && r.Y+r.H > s.Y
}

// Inset grows the rectangle by d on every side (shrinks it when d < 0).
func (r Rect) Inset(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.W + 2*d, r.H + 2*d}
}

// Union returns the smallest rectangle containing both r and s.
// The zero Rect is treated as empty, so Union can fold over a slice.
func (r Rect) Union(s Rect) Rect {
	if r == (Rect{}) {
		return s
	}
	if s == (Rect{}) {
		return r
	}
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.X+r.W, s.X+s.W)
	y1 := math.Max(r.Y+r.H, s.Y+s.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect { return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H} }

// Snap rounds v to the nearest multiple of cell. A non-positive cell disables snapping.
func Snap(v, cell float64) float64 {
	if cell <= 0 {
		return v
	}
	return math.Round(v/cell) * cell
}

// SnapPoint applies Snap to both coordinates.
func SnapPoint(p Point, cell float64) Point {
	return Point{Snap(p.X, cell), Snap(p.Y, cell)}
}

// SegmentDistance returns the distance from p to the closest point of segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Dist(p, Point{a.X + t*dx, a.Y + t*dy})
}
