// Package route computes where connections attach to items and the paths
// drawn between them.
//
// # Anchors
//
// Each item exposes four anchors, one per side, placed at the midpoint of
// that edge and pushed outward by an offset ([AnchorOffset] by default):
//
//	Top    (x+w/2, y-off)
//	Bottom (x+w/2, y+h+off)
//	Left   (x-off, y+h/2)
//	Right  (x+w+off, y+h/2)
//
// Anchors depend only on the item rectangle and the side, so they never need
// to be stored.
//
// # Paths
//
// [Compute] turns two endpoints, optional waypoints, a style and a direction
// into a [Path]. Waypoints always win: a connection with waypoints is drawn as
// a polyline through them whatever its style. Otherwise:
//
//   - straight: one segment
//   - elbow: one right-angle bend at the midpoint, horizontal-first or
//     vertical-first; auto picks horizontal when |dx| >= |dy|
//   - curved: a cubic Bézier whose controls sit at the midpoint x and the
//     endpoint y values
//
// # Waypoint Editing
//
// [InsertHandles] lists the segment midpoints where a new waypoint can be
// inserted, together with the slot it goes into. [InsertWaypoint],
// [MoveWaypoint] and [DeleteWaypoint] return edited copies of a waypoint
// slice and never exceed [board.MaxWaypoints].
package route
