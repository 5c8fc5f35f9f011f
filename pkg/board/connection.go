package board

import (
	"slices"

	"github.com/matzehuels/pinboard/pkg/geom"
)

// MaxWaypoints is the most waypoints a connection may hold.
const MaxWaypoints = 10

// Anchor is one of the four attachment sides of an item's bounding box.
type Anchor string

const (
	Top    Anchor = "top"
	Right  Anchor = "right"
	Bottom Anchor = "bottom"
	Left   Anchor = "left"
)

// Anchors lists every side in clockwise order starting at Top.
var Anchors = []Anchor{Top, Right, Bottom, Left}

// Valid reports whether a is one of the four sides.
func (a Anchor) Valid() bool { return slices.Contains(Anchors, a) }

// Style selects how a connection path is drawn.
type Style string

const (
	Straight Style = "straight"
	Elbow    Style = "elbow"
	Curved   Style = "curved"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool { return s == Straight || s == Elbow || s == Curved }

// Direction picks the bend orientation of elbow connections.
type Direction string

const (
	Auto            Direction = "auto"
	HorizontalFirst Direction = "horizontal"
	VerticalFirst   Direction = "vertical"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == Auto || d == HorizontalFirst || d == VerticalFirst }

// DisplayMode controls how much of a connection's text is drawn.
type DisplayMode string

const (
	DisplayNone    DisplayMode = "none"
	DisplayPurpose DisplayMode = "purpose"
	DisplayFull    DisplayMode = "full"
)

// Valid reports whether m is a known display mode.
func (m DisplayMode) Valid() bool { return m == DisplayNone || m == DisplayPurpose || m == DisplayFull }

// Connection is a directed edge between two items.
type Connection struct {
	ID          string       `json:"id"`
	FromID      string       `json:"fromId"`
	ToID        string       `json:"toId"`
	FromAnchor  Anchor       `json:"fromAnchor"`
	ToAnchor    Anchor       `json:"toAnchor"`
	Style       Style        `json:"style"`
	Direction   Direction    `json:"direction"`
	Waypoints   []geom.Point `json:"waypoints,omitempty"`
	Label       string       `json:"label,omitempty"`
	Color       string       `json:"color,omitempty"`
	Purpose     string       `json:"purpose,omitempty"`
	DisplayMode DisplayMode  `json:"displayMode,omitempty"`
}

// NewConnection returns a straight connection between two anchors with a
// fresh id.
func NewConnection(fromID string, fromAnchor Anchor, toID string, toAnchor Anchor) Connection {
	return Connection{
		ID:          NewID(),
		FromID:      fromID,
		ToID:        toID,
		FromAnchor:  fromAnchor,
		ToAnchor:    toAnchor,
		Style:       Straight,
		Direction:   Auto,
		DisplayMode: DisplayFull,
	}
}

// Clone returns a deep copy.
func (c Connection) Clone() Connection {
	c.Waypoints = slices.Clone(c.Waypoints)
	return c
}

// normalize fills unset enum fields and caps waypoints.
func (c Connection) normalize() Connection {
	if !c.FromAnchor.Valid() {
		c.FromAnchor = Bottom
	}
	if !c.ToAnchor.Valid() {
		c.ToAnchor = Top
	}
	if !c.Style.Valid() {
		c.Style = Straight
	}
	if !c.Direction.Valid() {
		c.Direction = Auto
	}
	if !c.DisplayMode.Valid() {
		c.DisplayMode = DisplayFull
	}
	if len(c.Waypoints) > MaxWaypoints {
		c.Waypoints = c.Waypoints[:MaxWaypoints]
	}
	return c
}

// Touches reports whether the connection references item id at either end.
func (c Connection) Touches(id string) bool { return c.FromID == id || c.ToID == id }

// sameTriple is the duplicate test used by the connect gesture: (from, to,
// fromAnchor). ToAnchor is not compared.
func (c Connection) sameTriple(o Connection) bool {
	return c.FromID == o.FromID && c.ToID == o.ToID && c.FromAnchor == o.FromAnchor
}
