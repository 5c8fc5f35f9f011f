package board

import (
	"errors"
	"reflect"
	"slices"

	"github.com/matzehuels/pinboard/pkg/geom"
)

const (
	// DuplicateOffset is how far a duplicate is shifted from its original.
	DuplicateOffset = 24.0

	// MinSize is the smallest width or height an item may have.
	MinSize = 1.0
)

var (
	// ErrSelfLoop is returned by [State.TryAddConnection] when both ends
	// reference the same item.
	ErrSelfLoop = errors.New("connection endpoints must differ")

	// ErrDuplicateConnection is returned by [State.TryAddConnection] when a
	// connection with the same source, target and source anchor exists.
	ErrDuplicateConnection = errors.New("duplicate connection")

	// ErrUnknownItem is returned when an operation references an item id
	// that is not on the board.
	ErrUnknownItem = errors.New("unknown item")

	// ErrDuplicateItem is returned by [State.TryAddItem] when the id is taken.
	ErrDuplicateItem = errors.New("duplicate item id")
)

// State is the complete content of one board.
type State struct {
	Items       []Item       `json:"items"`
	Connections []Connection `json:"connections"`
}

// Equal reports whether two states are deeply equal.
func Equal(a, b State) bool { return reflect.DeepEqual(a, b) }

// Clone returns a deep copy sharing no memory with s.
func (s State) Clone() State {
	out := State{}
	if s.Items != nil {
		out.Items = make([]Item, len(s.Items))
		for i, it := range s.Items {
			out.Items[i] = it.Clone()
		}
	}
	if s.Connections != nil {
		out.Connections = make([]Connection, len(s.Connections))
		for i, c := range s.Connections {
			out.Connections[i] = c.Clone()
		}
	}
	return out
}

// Index maps every item id to its position in the z-order.
func (s State) Index() map[string]int {
	idx := make(map[string]int, len(s.Items))
	for i, it := range s.Items {
		idx[it.ID] = i
	}
	return idx
}

func (s State) itemIndex(id string) int {
	return slices.IndexFunc(s.Items, func(it Item) bool { return it.ID == id })
}

func (s State) connIndex(id string) int {
	return slices.IndexFunc(s.Connections, func(c Connection) bool { return c.ID == id })
}

// Item returns the item with the given id.
func (s State) Item(id string) (Item, bool) {
	if i := s.itemIndex(id); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

// Connection returns the connection with the given id.
func (s State) Connection(id string) (Connection, bool) {
	if i := s.connIndex(id); i >= 0 {
		return s.Connections[i], true
	}
	return Connection{}, false
}

// ConnectionsOf returns every connection touching item id.
func (s State) ConnectionsOf(id string) []Connection {
	var out []Connection
	for _, c := range s.Connections {
		if c.Touches(id) {
			out = append(out, c)
		}
	}
	return out
}

// Bounds returns the union of all item rectangles, or the zero Rect for an
// empty board.
func (s State) Bounds() geom.Rect {
	var r geom.Rect
	for _, it := range s.Items {
		r = r.Union(it.Rect())
	}
	return r
}

// updateItem applies fn to a copy of the item and returns the new state.
// Locked items are left alone unless force is set.
func (s State) updateItem(id string, force bool, fn func(*Item)) State {
	i := s.itemIndex(id)
	if i < 0 || (s.Items[i].Locked && !force) {
		return s
	}
	items := slices.Clone(s.Items)
	it := items[i].Clone()
	fn(&it)
	it.W = max(it.W, MinSize)
	it.H = max(it.H, MinSize)
	items[i] = it
	return State{Items: items, Connections: s.Connections}
}

// AddItem appends an item on top of the z-order. Items with an empty or
// already used id are ignored.
func (s State) AddItem(it Item) State {
	out, _ := s.TryAddItem(it)
	return out
}

// TryAddItem is AddItem with the reason for a rejected item.
func (s State) TryAddItem(it Item) (State, error) {
	if it.ID == "" {
		return s, ErrUnknownItem
	}
	if s.itemIndex(it.ID) >= 0 {
		return s, ErrDuplicateItem
	}
	it = it.Clone()
	it.W = max(it.W, MinSize)
	it.H = max(it.H, MinSize)
	if it.Payload == nil {
		it.Payload = ResourceItem{}
	}
	items := append(slices.Clone(s.Items), it)
	return State{Items: items, Connections: s.Connections}, nil
}

// RemoveItem deletes an item and every connection that references it.
func (s State) RemoveItem(id string) State {
	i := s.itemIndex(id)
	if i < 0 {
		return s
	}
	items := slices.Delete(slices.Clone(s.Items), i, i+1)
	var conns []Connection
	for _, c := range s.Connections {
		if !c.Touches(id) {
			conns = append(conns, c)
		}
	}
	if conns == nil && s.Connections != nil {
		conns = []Connection{}
	}
	return State{Items: items, Connections: conns}
}

// MoveItem sets the top-left corner of an item.
func (s State) MoveItem(id string, x, y float64) State {
	return s.updateItem(id, false, func(it *Item) { it.X, it.Y = x, y })
}

// ResizeItem sets an item's size. Sizes below MinSize are clamped.
func (s State) ResizeItem(id string, w, h float64) State {
	return s.updateItem(id, false, func(it *Item) { it.W, it.H = w, h })
}

// SetNoteText replaces the text of a note. Other items are unaffected.
func (s State) SetNoteText(id, text string) State {
	it, ok := s.Item(id)
	if !ok || !it.IsNote() {
		return s
	}
	return s.updateItem(id, true, func(it *Item) { it.Payload = NoteItem{Text: text} })
}

// SetOpacity sets an item's opacity, clamped to [0, 1].
func (s State) SetOpacity(id string, o float64) State {
	return s.updateItem(id, true, func(it *Item) { it.Opacity = min(max(o, 0), 1) })
}

// SetLocked locks or unlocks an item. Locked items ignore move, resize,
// align and template operations.
func (s State) SetLocked(id string, locked bool) State {
	return s.updateItem(id, true, func(it *Item) { it.Locked = locked })
}

// Order is the direction of a one-step z-order change.
type Order int

const (
	Forward Order = iota
	Backward
)

// ReorderItem swaps an item with its neighbour in z-order. Moving the top
// item forward or the bottom item backward does nothing.
func (s State) ReorderItem(id string, o Order) State {
	i := s.itemIndex(id)
	if i < 0 {
		return s
	}
	j := i + 1
	if o == Backward {
		j = i - 1
	}
	if j < 0 || j >= len(s.Items) {
		return s
	}
	items := slices.Clone(s.Items)
	items[i], items[j] = items[j], items[i]
	return State{Items: items, Connections: s.Connections}
}

// BringToFront moves an item to the top of the z-order.
func (s State) BringToFront(id string) State {
	i := s.itemIndex(id)
	if i < 0 || i == len(s.Items)-1 {
		return s
	}
	items := slices.Clone(s.Items)
	it := items[i]
	items = append(slices.Delete(items, i, i+1), it)
	return State{Items: items, Connections: s.Connections}
}

// SendToBack moves an item to the bottom of the z-order.
func (s State) SendToBack(id string) State {
	i := s.itemIndex(id)
	if i <= 0 {
		return s
	}
	items := slices.Clone(s.Items)
	it := items[i]
	items = slices.Insert(slices.Delete(items, i, i+1), 0, it)
	return State{Items: items, Connections: s.Connections}
}

// Alignment names how [State.AlignItem] positions an item inside a frame.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignTop     Alignment = "top"
	AlignCenterH Alignment = "center-h"
	AlignCenterV Alignment = "center-v"
	AlignFill    Alignment = "fill"
)

// AlignItem positions an item against frame, which is either the visible
// viewport rectangle or the full canvas bounds in canvas space.
//
//   - left and top move the item to the frame's left or top edge
//   - center-h and center-v centre it on the frame's vertical or horizontal axis
//   - fill moves it to the frame origin and resizes it to the frame size
func (s State) AlignItem(id string, a Alignment, frame geom.Rect) State {
	c := frame.Center()
	return s.updateItem(id, false, func(it *Item) {
		switch a {
		case AlignLeft:
			it.X = frame.X
		case AlignTop:
			it.Y = frame.Y
		case AlignCenterH:
			it.X = c.X - it.W/2
		case AlignCenterV:
			it.Y = c.Y - it.H/2
		case AlignFill:
			if frame.Valid() {
				it.X, it.Y, it.W, it.H = frame.X, frame.Y, frame.W, frame.H
			}
		}
	})
}

// DuplicateItem copies an item under a new id, offset by DuplicateOffset on
// both axes, and places the copy on top. It returns the new id, or "" if id
// is unknown.
func (s State) DuplicateItem(id string) (State, string) {
	it, ok := s.Item(id)
	if !ok {
		return s, ""
	}
	dup := it.Clone()
	dup.ID = NewID()
	dup.X += DuplicateOffset
	dup.Y += DuplicateOffset
	if dup.IsNote() {
		dup.ResourceID = NoteURNPrefix + NewID()
	}
	return s.AddItem(dup), dup.ID
}

// AddConnection adds c unless it is a self loop, references a missing item
// or duplicates an existing (FromID, ToID, FromAnchor) triple.
func (s State) AddConnection(c Connection) State {
	out, _ := s.TryAddConnection(c)
	return out
}

// TryAddConnection is AddConnection with the reason for a rejection.
func (s State) TryAddConnection(c Connection) (State, error) {
	if c.FromID == c.ToID {
		return s, ErrSelfLoop
	}
	if s.itemIndex(c.FromID) < 0 || s.itemIndex(c.ToID) < 0 {
		return s, ErrUnknownItem
	}
	c = c.Clone().normalize()
	for _, o := range s.Connections {
		if o.sameTriple(c) {
			return s, ErrDuplicateConnection
		}
	}
	if c.ID == "" || s.connIndex(c.ID) >= 0 {
		c.ID = NewID()
	}
	conns := append(slices.Clone(s.Connections), c)
	return State{Items: s.Items, Connections: conns}, nil
}

// UpdateConnection applies fn to a copy of a connection. The edit is dropped
// if it would leave a self loop or a dangling endpoint. The id cannot change
// and waypoints are truncated to MaxWaypoints.
func (s State) UpdateConnection(id string, fn func(*Connection)) State {
	i := s.connIndex(id)
	if i < 0 {
		return s
	}
	c := s.Connections[i].Clone()
	fn(&c)
	c.ID = id
	c = c.normalize()
	if c.FromID == c.ToID || s.itemIndex(c.FromID) < 0 || s.itemIndex(c.ToID) < 0 {
		return s
	}
	conns := slices.Clone(s.Connections)
	conns[i] = c
	return State{Items: s.Items, Connections: conns}
}

// RemoveConnection deletes a connection.
func (s State) RemoveConnection(id string) State {
	i := s.connIndex(id)
	if i < 0 {
		return s
	}
	conns := slices.Delete(slices.Clone(s.Connections), i, i+1)
	return State{Items: s.Items, Connections: conns}
}

// SetWaypoints replaces a connection's waypoints, keeping at most
// MaxWaypoints of them.
func (s State) SetWaypoints(id string, pts []geom.Point) State {
	return s.UpdateConnection(id, func(c *Connection) {
		if len(pts) == 0 {
			c.Waypoints = nil
			return
		}
		c.Waypoints = slices.Clone(pts[:min(len(pts), MaxWaypoints)])
	})
}

// Sanitize repairs a state read from an untrusted source: items without an
// id get one, duplicate ids are renamed, sizes are clamped, and connections
// that are self loops, dangling, or duplicates are dropped.
func (s State) Sanitize() State {
	out := State{Items: make([]Item, 0, len(s.Items)), Connections: []Connection{}}
	seen := make(map[string]bool, len(s.Items))
	for _, it := range s.Items {
		it = it.Clone()
		if it.ID == "" || seen[it.ID] {
			it.ID = NewID()
		}
		seen[it.ID] = true
		it.W = max(it.W, MinSize)
		it.H = max(it.H, MinSize)
		if it.Payload == nil {
			it.Payload = ResourceItem{}
		}
		out.Items = append(out.Items, it)
	}
	for _, c := range s.Connections {
		out, _ = out.TryAddConnection(c)
	}
	return out
}
