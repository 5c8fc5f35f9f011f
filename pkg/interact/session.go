package interact

import (
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

// Tool is the active editing mode.
type Tool int

const (
	Select Tool = iota
	Connect
	Note
)

func (t Tool) String() string {
	switch t {
	case Connect:
		return "connect"
	case Note:
		return "note"
	default:
		return "select"
	}
}

// Session is the state of the gesture in progress. It is one of Idle,
// Dragging, Connecting, Panning or DraggingWaypoint.
type Session interface {
	session()
}

// Idle means no gesture is in progress.
type Idle struct{}

// Dragging moves an item. Grab is the pointer offset from the item origin in
// canvas units.
type Dragging struct {
	ItemID string
	Grab   geom.Point
}

// Connecting draws a connection from an item anchor. Pointer is the current
// canvas position of the loose end.
type Connecting struct {
	SourceID string
	Anchor   board.Anchor
	Pointer  geom.Point
}

// Panning moves the viewport. Last is the previous screen position.
type Panning struct {
	Last geom.Point
}

// DraggingWaypoint moves one waypoint of a connection.
type DraggingWaypoint struct {
	ConnID string
	Index  int
}

func (Idle) session()             {}
func (Dragging) session()         {}
func (Connecting) session()       {}
func (Panning) session()          {}
func (DraggingWaypoint) session() {}

// Selection is the selected item or connection. At most one field is set.
type Selection struct {
	ItemID string
	ConnID string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.ItemID == "" && s.ConnID == "" }

// Line is the live preview of a connection being drawn, in canvas space.
type Line struct {
	From, To geom.Point
}
