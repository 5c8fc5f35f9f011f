package route

import (
	"math"
	"slices"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

// Handle is an insert affordance: clicking Point inserts a waypoint at index
// Slot of the connection's waypoint slice.
type Handle struct {
	Slot  int
	Point geom.Point
}

// InsertHandles returns the insert handles of a path whose connection holds
// n waypoints. It returns nil once n reaches board.MaxWaypoints.
//
// A path with waypoints is a polyline start, w0..wn-1, end, so segment i
// inserts at slot i. A path without waypoints gets one handle per drawn
// segment (a single one at the curve midpoint for cubics), all at slot 0.
func InsertHandles(p Path, n int) []Handle {
	if n >= board.MaxWaypoints || len(p.Points) < 2 {
		return nil
	}
	if p.Kind == Cubic {
		return []Handle{{Slot: 0, Point: p.Midpoint()}}
	}
	out := make([]Handle, 0, len(p.Points)-1)
	for i := 0; i+1 < len(p.Points); i++ {
		slot := 0
		if n > 0 {
			slot = i
		}
		out = append(out, Handle{Slot: slot, Point: geom.Mid(p.Points[i], p.Points[i+1])})
	}
	return out
}

// InsertWaypoint returns a copy of wps with p inserted at slot. It returns
// wps unchanged when the slice is already full.
func InsertWaypoint(wps []geom.Point, slot int, p geom.Point) []geom.Point {
	if len(wps) >= board.MaxWaypoints {
		return wps
	}
	slot = min(max(slot, 0), len(wps))
	return slices.Insert(slices.Clone(wps), slot, p)
}

// MoveWaypoint returns a copy of wps with waypoint i moved to p. With snap
// set, the segment from the previous point (start for i == 0) is constrained
// to the nearest multiple of 45 degrees.
func MoveWaypoint(wps []geom.Point, i int, p geom.Point, start geom.Point, snap bool) []geom.Point {
	if i < 0 || i >= len(wps) {
		return wps
	}
	if snap {
		prev := start
		if i > 0 {
			prev = wps[i-1]
		}
		p = SnapAngle(prev, p)
	}
	out := slices.Clone(wps)
	out[i] = p
	return out
}

// DeleteWaypoint returns a copy of wps without waypoint i.
func DeleteWaypoint(wps []geom.Point, i int) []geom.Point {
	if i < 0 || i >= len(wps) {
		return wps
	}
	out := slices.Delete(slices.Clone(wps), i, i+1)
	if len(out) == 0 {
		return nil
	}
	return out
}

// SnapAngle rotates p around prev onto the nearest 45 degree ray, keeping its
// distance from prev.
func SnapAngle(prev, p geom.Point) geom.Point {
	d := p.Sub(prev)
	r := math.Hypot(d.X, d.Y)
	if r == 0 {
		return p
	}
	step := math.Pi / 4
	a := math.Round(math.Atan2(d.Y, d.X)/step) * step
	x, y := r*math.Cos(a), r*math.Sin(a)
	// Clean up float noise on the axis-aligned rays.
	if math.Abs(x) < 1e-9 {
		x = 0
	}
	if math.Abs(y) < 1e-9 {
		y = 0
	}
	return geom.Pt(prev.X+x, prev.Y+y)
}
