package interact

import (
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/resolve"
	"github.com/matzehuels/pinboard/pkg/route"
	"github.com/matzehuels/pinboard/pkg/viewport"
)

// Config holds the interaction constants. Zero fields take their defaults.
type Config struct {
	// AnchorOffset is the distance of anchor handles from the item edge.
	AnchorOffset float64 `toml:"anchor_offset" yaml:"anchor_offset" json:"anchorOffset,omitempty"`
	// HandleRadius and PathTolerance are hit radii in screen pixels.
	HandleRadius  float64 `toml:"handle_radius" yaml:"handle_radius" json:"handleRadius,omitempty"`
	PathTolerance float64 `toml:"path_tolerance" yaml:"path_tolerance" json:"pathTolerance,omitempty"`
	// NoteSize and ResourceSize are the sizes of newly placed items.
	NoteSize     geom.Point `toml:"note_size" yaml:"note_size" json:"noteSize,omitempty"`
	ResourceSize geom.Point `toml:"resource_size" yaml:"resource_size" json:"resourceSize,omitempty"`
	// Canvas is the frame used by the "align to canvas" bindings.
	Canvas geom.Rect `toml:"canvas" yaml:"canvas" json:"canvas,omitempty"`
	// Screen is the initial size of the screen area showing the board.
	Screen geom.Point `toml:"screen" yaml:"screen" json:"screen,omitempty"`
}

// DefaultConfig returns the default interaction constants.
func DefaultConfig() Config {
	return Config{
		AnchorOffset:  route.AnchorOffset,
		HandleRadius:  8,
		PathTolerance: 6,
		NoteSize:      geom.Pt(160, 96),
		ResourceSize:  geom.Pt(160, 120),
		Canvas:        geom.R(0, 0, 2400, 1600),
		Screen:        geom.Pt(1280, 800),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AnchorOffset <= 0 {
		c.AnchorOffset = d.AnchorOffset
	}
	if c.HandleRadius <= 0 {
		c.HandleRadius = d.HandleRadius
	}
	if c.PathTolerance <= 0 {
		c.PathTolerance = d.PathTolerance
	}
	if c.NoteSize.X <= 0 || c.NoteSize.Y <= 0 {
		c.NoteSize = d.NoteSize
	}
	if c.ResourceSize.X <= 0 || c.ResourceSize.Y <= 0 {
		c.ResourceSize = d.ResourceSize
	}
	if !c.Canvas.Valid() {
		c.Canvas = d.Canvas
	}
	if c.Screen.X <= 0 || c.Screen.Y <= 0 {
		c.Screen = d.Screen
	}
	return c
}

// Effect says how a Mutation reaches the store.
type Effect int

const (
	// Apply runs Op as one history step.
	Apply Effect = iota
	// Begin opens a gesture named Label and previews Op when set.
	Begin
	// Preview runs Op on the open gesture without touching history.
	Preview
	// Commit closes the gesture as one history step.
	Commit
	// Cancel closes the gesture and restores the state before it.
	Cancel
)

// Mutation is a change a transition asks the machine to make.
type Mutation struct {
	Effect Effect
	Label  string
	Op     history.Op
	// Then runs after the mutation reached the store.
	Then func()
}

// Result reports what handling an event changed.
type Result struct {
	// Changed is set when the board state changed, previews included.
	Changed bool
	// ViewChanged is set when the viewport, tool or selection changed.
	ViewChanged bool
	// Preview is the loose connection line while connecting.
	Preview *Line
}

// Machine dispatches input events for one board.
type Machine struct {
	Store    *history.Store
	Viewport *viewport.Viewport
	Config   Config
	Resolver resolve.Resolver

	tool      Tool
	session   Session
	sel       Selection
	spaceHeld bool
	screen    geom.Point
}

// New returns a machine in the select tool with nothing selected. A nil
// viewport gets the default options; a nil resolver turns every drop into a
// placeholder.
func New(store *history.Store, vp *viewport.Viewport, cfg Config, r resolve.Resolver) *Machine {
	if vp == nil {
		vp = viewport.New(viewport.DefaultOptions())
	}
	cfg = cfg.withDefaults()
	return &Machine{
		Store:    store,
		Viewport: vp,
		Config:   cfg,
		Resolver: r,
		session:  Idle{},
		screen:   cfg.Screen,
	}
}

// Tool returns the active tool.
func (m *Machine) Tool() Tool { return m.tool }

// SetTool switches tools. It is ignored while a gesture is in progress.
func (m *Machine) SetTool(t Tool) bool {
	if _, idle := m.session.(Idle); !idle || m.tool == t {
		return false
	}
	m.tool = t
	return true
}

// Session returns the gesture in progress.
func (m *Machine) Session() Session { return m.session }

// Selection returns the current selection. Items or connections removed in
// the meantime, by undo for instance, are not reported.
func (m *Machine) Selection() Selection {
	s := m.Store.State()
	sel := m.sel
	if _, ok := s.Item(sel.ItemID); !ok {
		sel.ItemID = ""
	}
	if _, ok := s.Connection(sel.ConnID); !ok {
		sel.ConnID = ""
	}
	return sel
}

// Select selects an item, clearing any connection selection.
func (m *Machine) Select(itemID string) { m.sel = Selection{ItemID: itemID} }

// SelectConnection selects a connection, clearing any item selection.
func (m *Machine) SelectConnection(connID string) { m.sel = Selection{ConnID: connID} }

// SetScreen sets the size of the screen area showing the board, used for
// aligning items to the visible part of the canvas.
func (m *Machine) SetScreen(w, h float64) { m.screen = geom.Pt(w, h) }

// Visible returns the canvas rectangle currently on screen.
func (m *Machine) Visible() geom.Rect { return m.Viewport.Visible(m.screen.X, m.screen.Y) }

// PreviewLine returns the loose connection line while connecting.
func (m *Machine) PreviewLine() (Line, bool) {
	c, ok := m.session.(Connecting)
	if !ok {
		return Line{}, false
	}
	it, ok := m.Store.State().Item(c.SourceID)
	if !ok {
		return Line{}, false
	}
	from := route.AnchorPoint(it.Rect(), c.Anchor, m.Config.AnchorOffset)
	return Line{From: from, To: c.Pointer}, true
}

// Handle processes one event.
func (m *Machine) Handle(ev Event) Result {
	var (
		next Session
		mu   *Mutation
		res  Result
	)
	switch ev.Kind {
	case PointerDown:
		next, mu, res.ViewChanged = m.pointerDown(ev)
	case PointerMove:
		next, mu, res.ViewChanged = m.pointerMove(ev)
	case PointerUp:
		next, mu = m.pointerUp(ev)
	case DoubleClick:
		next, mu = m.doubleClick(ev)
	case Wheel:
		next, res.ViewChanged = m.wheel(ev)
	case KeyDown:
		next, mu, res.ViewChanged = m.keyDown(ev)
	case KeyUp:
		next = m.keyUp(ev)
	default:
		next = m.session
	}
	m.session = next
	if mu != nil {
		res.Changed = m.run(*mu)
		if mu.Then != nil {
			mu.Then()
		}
	}
	if l, ok := m.PreviewLine(); ok {
		res.Preview = &l
	}
	return res
}

func (m *Machine) run(mu Mutation) bool {
	switch mu.Effect {
	case Begin, Preview:
		before := m.Store.State()
		if mu.Effect == Begin {
			m.Store.Begin(mu.Label)
		}
		if mu.Op == nil {
			return false
		}
		m.Store.Preview(mu.Op)
		return !board.Equal(before, m.Store.State())
	case Commit:
		return m.Store.Commit()
	case Cancel:
		before := m.Store.State()
		m.Store.Cancel()
		return !board.Equal(before, m.Store.State())
	default:
		return m.Store.Apply(mu.Label, mu.Op)
	}
}

func (m *Machine) pointerDown(ev Event) (Session, *Mutation, bool) {
	if _, idle := m.session.(Idle); !idle {
		return m.session, nil, false
	}
	if ev.Button != ButtonPrimary || m.spaceHeld {
		return Panning{Last: ev.Screen}, nil, false
	}

	s := m.Store.State()
	hit := m.hitTest(s, ev.Screen, false)
	switch hit.Kind {
	case HitWaypoint:
		return DraggingWaypoint{ConnID: hit.ConnID, Index: hit.Index}, &Mutation{Effect: Begin, Label: "move waypoint"}, false

	case HitInsert:
		// The new waypoint is inserted as a preview and can be dragged
		// right away; press, drag and release are one history step.
		p := m.Viewport.Place(ev.Screen)
		id, slot := hit.ConnID, hit.Index
		return DraggingWaypoint{ConnID: id, Index: slot}, &Mutation{Effect: Begin, Label: "insert waypoint", Op: func(s board.State) board.State {
			c, ok := s.Connection(id)
			if !ok {
				return s
			}
			return s.SetWaypoints(id, route.InsertWaypoint(c.Waypoints, slot, p))
		}}, false

	case HitAnchor:
		m.sel = Selection{ItemID: hit.ItemID}
		return Connecting{SourceID: hit.ItemID, Anchor: hit.Anchor, Pointer: hit.Point}, nil, true

	case HitItem:
		if m.tool == Note {
			return m.placeNote(ev)
		}
		m.sel = Selection{ItemID: hit.ItemID}
		if m.tool == Connect {
			return Connecting{SourceID: hit.ItemID, Anchor: board.Bottom, Pointer: hit.Point}, nil, true
		}
		it, _ := s.Item(hit.ItemID)
		if it.Locked {
			return Idle{}, nil, true
		}
		grab := hit.Point.Sub(geom.Pt(it.X, it.Y))
		return Dragging{ItemID: it.ID, Grab: grab}, &Mutation{Effect: Begin, Label: "move item"}, true

	case HitConnection:
		m.sel = Selection{ConnID: hit.ConnID}
		return Idle{}, nil, true

	default:
		if m.tool == Note {
			return m.placeNote(ev)
		}
		changed := !m.sel.Empty()
		m.sel = Selection{}
		return Idle{}, nil, changed
	}
}

func (m *Machine) placeNote(ev Event) (Session, *Mutation, bool) {
	p := m.Viewport.Place(ev.Screen)
	note := board.NewNote("", geom.R(p.X, p.Y, m.Config.NoteSize.X, m.Config.NoteSize.Y))
	m.sel = Selection{ItemID: note.ID}
	m.tool = Select
	return Idle{}, &Mutation{Label: "add note", Op: func(s board.State) board.State { return s.AddItem(note) }}, true
}

func (m *Machine) pointerMove(ev Event) (Session, *Mutation, bool) {
	switch sess := m.session.(type) {
	case Panning:
		d := ev.Screen.Sub(sess.Last)
		m.Viewport.Pan(d.X, d.Y)
		return Panning{Last: ev.Screen}, nil, d != geom.Point{}

	case Dragging:
		target := m.Viewport.SnapPoint(m.Viewport.ToCanvas(ev.Screen).Sub(sess.Grab))
		id := sess.ItemID
		return sess, &Mutation{Effect: Preview, Op: func(s board.State) board.State {
			return s.MoveItem(id, target.X, target.Y)
		}}, false

	case Connecting:
		sess.Pointer = m.Viewport.ToCanvas(ev.Screen)
		return sess, nil, false

	case DraggingWaypoint:
		p := m.Viewport.Place(ev.Screen)
		id, i, snap, off := sess.ConnID, sess.Index, ev.Mods.Shift, m.Config.AnchorOffset
		return sess, &Mutation{Effect: Preview, Op: func(s board.State) board.State {
			c, ok := s.Connection(id)
			if !ok {
				return s
			}
			start, _, ok := route.Endpoints(s, c, off)
			if !ok {
				return s
			}
			return s.SetWaypoints(id, route.MoveWaypoint(c.Waypoints, i, p, start, snap))
		}}, false
	}
	return m.session, nil, false
}

func (m *Machine) pointerUp(ev Event) (Session, *Mutation) {
	switch sess := m.session.(type) {
	case Dragging, DraggingWaypoint:
		return Idle{}, &Mutation{Effect: Commit}

	case Connecting:
		return Idle{}, m.finishConnect(sess, ev.Screen)
	}
	return Idle{}, nil
}

// finishConnect resolves the release target of a connect gesture. Releasing
// over empty space, or over the source item, yields no mutation.
func (m *Machine) finishConnect(sess Connecting, screen geom.Point) *Mutation {
	hit := m.hitTest(m.Store.State(), screen, true)
	var toAnchor board.Anchor
	switch hit.Kind {
	case HitAnchor:
		toAnchor = hit.Anchor
	case HitItem:
		toAnchor = board.Top
	default:
		return nil
	}
	if hit.ItemID == sess.SourceID {
		return nil
	}
	c := board.NewConnection(sess.SourceID, sess.Anchor, hit.ItemID, toAnchor)
	return &Mutation{Label: "connect", Op: func(s board.State) board.State { return s.AddConnection(c) }}
}

func (m *Machine) doubleClick(ev Event) (Session, *Mutation) {
	if _, idle := m.session.(Idle); !idle {
		return m.session, nil
	}
	hit := m.HitTest(ev.Screen)
	if hit.Kind != HitWaypoint {
		return Idle{}, nil
	}
	id, i := hit.ConnID, hit.Index
	return Idle{}, &Mutation{Label: "delete waypoint", Op: func(s board.State) board.State {
		c, ok := s.Connection(id)
		if !ok {
			return s
		}
		return s.SetWaypoints(id, route.DeleteWaypoint(c.Waypoints, i))
	}}
}

func (m *Machine) wheel(ev Event) (Session, bool) {
	if ev.Delta == 0 {
		return m.session, false
	}
	opts := m.Viewport.Options()
	factor := opts.ZoomOutFactor
	if ev.Delta < 0 {
		factor = opts.ZoomInFactor
	}
	before := m.Viewport.Scale
	m.Viewport.ZoomAt(ev.Screen, factor)
	return m.session, m.Viewport.Scale != before
}
