package route

import (
	"math"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

// AnchorOffset is the default distance between an item edge and its anchor.
const AnchorOffset = 24.0

// AnchorPoint returns the anchor position for one side of r.
func AnchorPoint(r geom.Rect, side board.Anchor, offset float64) geom.Point {
	switch side {
	case board.Top:
		return geom.Pt(r.X+r.W/2, r.Y-offset)
	case board.Right:
		return geom.Pt(r.X+r.W+offset, r.Y+r.H/2)
	case board.Left:
		return geom.Pt(r.X-offset, r.Y+r.H/2)
	default:
		return geom.Pt(r.X+r.W/2, r.Y+r.H+offset)
	}
}

// BestAnchors picks the pair of facing sides for a connection from one
// rectangle to another, comparing the centre offsets on each axis.
func BestAnchors(from, to geom.Rect) (board.Anchor, board.Anchor) {
	d := to.Center().Sub(from.Center())
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return board.Right, board.Left
		}
		return board.Left, board.Right
	}
	if d.Y >= 0 {
		return board.Bottom, board.Top
	}
	return board.Top, board.Bottom
}

// Endpoints resolves the start and end anchor points of c in s. It reports
// false when either endpoint item is missing; such connections are never
// drawn.
func Endpoints(s board.State, c board.Connection, offset float64) (geom.Point, geom.Point, bool) {
	from, ok1 := s.Item(c.FromID)
	to, ok2 := s.Item(c.ToID)
	if !ok1 || !ok2 || c.FromID == c.ToID {
		return geom.Point{}, geom.Point{}, false
	}
	return AnchorPoint(from.Rect(), c.FromAnchor, offset), AnchorPoint(to.Rect(), c.ToAnchor, offset), true
}

// ForConnection computes the drawn path of c in s.
func ForConnection(s board.State, c board.Connection, offset float64) (Path, bool) {
	start, end, ok := Endpoints(s, c, offset)
	if !ok {
		return Path{}, false
	}
	return Compute(start, end, c.Waypoints, c.Style, c.Direction), true
}

// Routed pairs a connection with its computed path.
type Routed struct {
	Conn board.Connection
	Path Path
}

// All routes every drawable connection in s in order, building the item
// index once. Dangling connections are left out.
func All(s board.State, offset float64) []Routed {
	idx := s.Index()
	out := make([]Routed, 0, len(s.Connections))
	for _, c := range s.Connections {
		fi, ok1 := idx[c.FromID]
		ti, ok2 := idx[c.ToID]
		if !ok1 || !ok2 || fi == ti {
			continue
		}
		start := AnchorPoint(s.Items[fi].Rect(), c.FromAnchor, offset)
		end := AnchorPoint(s.Items[ti].Rect(), c.ToAnchor, offset)
		out = append(out, Routed{Conn: c, Path: Compute(start, end, c.Waypoints, c.Style, c.Direction)})
	}
	return out
}
