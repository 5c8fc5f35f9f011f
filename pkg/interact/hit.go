package interact

import (
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/route"
)

// HitKind is what a pointer position landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitWaypoint
	HitInsert
	HitAnchor
	HitItem
	HitConnection
)

// Hit describes the target under the pointer. Index is the waypoint index
// for HitWaypoint and the insert slot for HitInsert.
type Hit struct {
	Kind   HitKind
	ItemID string
	ConnID string
	Anchor board.Anchor
	Index  int
	Point  geom.Point
}

// HitTest returns the topmost target under a screen position. Targets are
// tried in this order: waypoint handles and insert handles of the selected
// connection, visible anchor handles, item bodies from the top of the
// z-order down, and finally connection paths.
func (m *Machine) HitTest(screen geom.Point) Hit {
	return m.hitTest(m.Store.State(), screen, false)
}

// hitTest is HitTest on a given state. With allAnchors set every item shows
// its anchors, as while a connection is being drawn.
func (m *Machine) hitTest(s board.State, screen geom.Point, allAnchors bool) Hit {
	p := m.Viewport.ToCanvas(screen)
	radius := m.Config.HandleRadius / m.Viewport.Scale
	tol := m.Config.PathTolerance / m.Viewport.Scale
	off := m.Config.AnchorOffset

	if c, ok := s.Connection(m.sel.ConnID); ok {
		if path, ok := route.ForConnection(s, c, off); ok {
			for i, w := range c.Waypoints {
				if geom.Dist(p, w) <= radius {
					return Hit{Kind: HitWaypoint, ConnID: c.ID, Index: i, Point: w}
				}
			}
			for _, h := range route.InsertHandles(path, len(c.Waypoints)) {
				if geom.Dist(p, h.Point) <= radius {
					return Hit{Kind: HitInsert, ConnID: c.ID, Index: h.Slot, Point: h.Point}
				}
			}
		}
	}

	for i := len(s.Items) - 1; i >= 0; i-- {
		it := s.Items[i]
		if !allAnchors && m.tool != Connect && m.sel.ItemID != it.ID {
			continue
		}
		for _, side := range board.Anchors {
			a := route.AnchorPoint(it.Rect(), side, off)
			if geom.Dist(p, a) <= radius {
				return Hit{Kind: HitAnchor, ItemID: it.ID, Anchor: side, Point: a}
			}
		}
	}

	for i := len(s.Items) - 1; i >= 0; i-- {
		if s.Items[i].Rect().Contains(p) {
			return Hit{Kind: HitItem, ItemID: s.Items[i].ID, Point: p}
		}
	}

	routed := route.All(s, off)
	for i := len(routed) - 1; i >= 0; i-- {
		if route.HitPath(routed[i].Path, p, tol) {
			return Hit{Kind: HitConnection, ConnID: routed[i].Conn.ID, Point: p}
		}
	}
	return Hit{Kind: HitNone, Point: p}
}
