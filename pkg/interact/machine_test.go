package interact

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/resolve"
)

// setup returns a machine over two notes: a at (100,100,100,80) and b at
// (400,100,100,80). The right anchor of a is at (224,140), the left anchor
// of b at (376,140).
func setup(t *testing.T) (*Machine, board.Item, board.Item) {
	t.Helper()
	a := board.NewNote("a", geom.R(100, 100, 100, 80))
	b := board.NewNote("b", geom.R(400, 100, 100, 80))
	st := history.NewStore(board.State{}.AddItem(a).AddItem(b), 0)
	return New(st, nil, Config{}, nil), a, b
}

func click(m *Machine, x, y float64) {
	m.Handle(Down(x, y))
	m.Handle(Up(x, y))
}

func item(t *testing.T, m *Machine, id string) board.Item {
	t.Helper()
	it, ok := m.Store.State().Item(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return it
}

func connect(m *Machine, a, b board.Item) string {
	c := board.NewConnection(a.ID, board.Right, b.ID, board.Left)
	m.Store.Apply("connect", func(s board.State) board.State { return s.AddConnection(c) })
	return c.ID
}

func TestNoteToolPlacesNoteAndReverts(t *testing.T) {
	m, _, _ := setup(t)
	m.Handle(Key("n", Mods{}))
	if m.Tool() != Note {
		t.Fatalf("tool = %v, want note", m.Tool())
	}
	res := m.Handle(Down(1000, 1000))
	m.Handle(Up(1000, 1000))

	if !res.Changed {
		t.Error("placing a note should change the board")
	}
	s := m.Store.State()
	if len(s.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(s.Items))
	}
	note := s.Items[2]
	if !note.IsNote() || note.X != 1000 || note.Y != 1000 || note.W != 160 || note.H != 96 {
		t.Errorf("note = %+v", note)
	}
	if m.Tool() != Select {
		t.Errorf("tool after placing = %v, want select", m.Tool())
	}
	if m.Selection().ItemID != note.ID {
		t.Error("new note should be selected")
	}

	m.Handle(Key("z", Mods{Ctrl: true}))
	if len(m.Store.State().Items) != 2 {
		t.Error("undo should remove the note")
	}
	if !m.Selection().Empty() {
		t.Error("selection should not report a removed item")
	}
}

func TestDragCommitsOneStep(t *testing.T) {
	m, a, _ := setup(t)
	m.Handle(Down(150, 140))
	if _, ok := m.Session().(Dragging); !ok {
		t.Fatalf("session = %T, want Dragging", m.Session())
	}
	m.Handle(Move(300, 300))
	// Pointer capture: moves far outside the item keep dragging it.
	if res := m.Handle(Move(650, 540)); !res.Changed {
		t.Error("move should preview a change")
	}
	if m.Store.CanUndo() {
		t.Error("previews must not reach history")
	}
	m.Handle(Up(650, 540))

	if got := item(t, m, a.ID); got.X != 600 || got.Y != 500 {
		t.Errorf("a at (%v,%v), want (600,500)", got.X, got.Y)
	}
	if !m.Store.Undo() {
		t.Fatal("drag not recorded")
	}
	if got := item(t, m, a.ID); got.X != 100 || got.Y != 100 {
		t.Errorf("after undo a at (%v,%v)", got.X, got.Y)
	}
	if m.Store.CanUndo() {
		t.Error("drag recorded more than one step")
	}
}

func TestDragEscapeReverts(t *testing.T) {
	m, a, _ := setup(t)
	m.Handle(Down(150, 140))
	m.Handle(Move(400, 400))
	m.Handle(Key("Escape", Mods{}))

	if got := item(t, m, a.ID); got.X != 100 || got.Y != 100 {
		t.Errorf("a at (%v,%v) after cancel", got.X, got.Y)
	}
	if m.Store.CanUndo() {
		t.Error("cancelled drag recorded")
	}
	if _, ok := m.Session().(Idle); !ok {
		t.Errorf("session = %T, want Idle", m.Session())
	}
	m.Handle(Up(400, 400))
	if m.Store.CanUndo() {
		t.Error("release after cancel recorded")
	}
}

func TestDragSnapsToGrid(t *testing.T) {
	m, a, _ := setup(t)
	m.Handle(Key("g", Mods{}))
	m.Handle(Down(150, 140))
	m.Handle(Move(650, 540))
	m.Handle(Up(650, 540))
	if got := item(t, m, a.ID); got.X != 600 || got.Y != 504 {
		t.Errorf("a at (%v,%v), want (600,504)", got.X, got.Y)
	}
}

func TestLockedItemDoesNotDrag(t *testing.T) {
	m, a, _ := setup(t)
	m.Store.Apply("lock", func(s board.State) board.State { return s.SetLocked(a.ID, true) })
	m.Handle(Down(150, 140))
	m.Handle(Move(400, 400))
	m.Handle(Up(400, 400))
	if got := item(t, m, a.ID); got.X != 100 {
		t.Errorf("locked item moved to %v", got.X)
	}
	if m.Selection().ItemID != a.ID {
		t.Error("locked item should still be selectable")
	}
}

func TestConnectAnchorToAnchor(t *testing.T) {
	m, a, b := setup(t)
	click(m, 150, 140) // select a so its anchors show

	res := m.Handle(Down(224, 140))
	if _, ok := m.Session().(Connecting); !ok {
		t.Fatalf("session = %T, want Connecting", m.Session())
	}
	if res.Preview == nil || res.Preview.From != geom.Pt(224, 140) {
		t.Errorf("preview = %+v", res.Preview)
	}
	res = m.Handle(Move(300, 150))
	if res.Preview == nil || res.Preview.To != geom.Pt(300, 150) {
		t.Errorf("preview after move = %+v", res.Preview)
	}
	res = m.Handle(Up(376, 140))
	if !res.Changed {
		t.Fatal("release on an anchor should connect")
	}
	if res.Preview != nil {
		t.Error("preview should end with the gesture")
	}

	conns := m.Store.State().Connections
	if len(conns) != 1 {
		t.Fatalf("connections = %d", len(conns))
	}
	c := conns[0]
	if c.FromID != a.ID || c.ToID != b.ID || c.FromAnchor != board.Right || c.ToAnchor != board.Left {
		t.Errorf("connection = %+v", c)
	}
}

func TestConnectToolReleaseOnBody(t *testing.T) {
	m, a, b := setup(t)
	m.Handle(Key("c", Mods{}))
	m.Handle(Down(150, 140))
	m.Handle(Up(450, 140))

	conns := m.Store.State().Connections
	if len(conns) != 1 {
		t.Fatalf("connections = %d", len(conns))
	}
	c := conns[0]
	if c.FromID != a.ID || c.ToID != b.ID || c.FromAnchor != board.Bottom || c.ToAnchor != board.Top {
		t.Errorf("connection = %+v, want bottom -> top", c)
	}
}

func TestConnectWithoutTargetIsDiscarded(t *testing.T) {
	tests := []struct {
		name   string
		finish func(m *Machine)
	}{
		{"empty space", func(m *Machine) { m.Handle(Up(300, 600)) }},
		{"source item", func(m *Machine) { m.Handle(Up(150, 140)) }},
		{"escape", func(m *Machine) {
			m.Handle(Key("Escape", Mods{}))
			m.Handle(Up(376, 140))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := setup(t)
			m.Handle(Key("c", Mods{}))
			m.Handle(Down(224, 140))
			m.Handle(Move(300, 300))
			tt.finish(m)
			if n := len(m.Store.State().Connections); n != 0 {
				t.Errorf("connections = %d, want 0", n)
			}
			if m.Store.CanUndo() {
				t.Error("discarded gesture recorded")
			}
		})
	}
}

func TestConnectDuplicateSuppressed(t *testing.T) {
	m, _, _ := setup(t)
	m.Handle(Key("c", Mods{}))
	for i := 0; i < 2; i++ {
		m.Handle(Down(224, 140))
		m.Handle(Up(376, 140))
	}
	if n := len(m.Store.State().Connections); n != 1 {
		t.Errorf("connections = %d, want 1", n)
	}
	m.Store.Undo()
	if m.Store.CanUndo() {
		t.Error("suppressed duplicate was recorded")
	}
}

func TestClickSelection(t *testing.T) {
	m, a, b := setup(t)
	id := connect(m, a, b)

	click(m, 150, 140)
	if got := m.Selection(); got.ItemID != a.ID || got.ConnID != "" {
		t.Errorf("selection = %+v, want item a", got)
	}
	click(m, 300, 140)
	if got := m.Selection(); got.ConnID != id || got.ItemID != "" {
		t.Errorf("selection = %+v, want the connection only", got)
	}
	click(m, 300, 600)
	if !m.Selection().Empty() {
		t.Errorf("selection = %+v, want empty", m.Selection())
	}
}

func TestWaypointInsertDragDelete(t *testing.T) {
	m, a, b := setup(t)
	id := connect(m, a, b)
	click(m, 300, 140)

	m.Handle(Down(300, 140))
	if _, ok := m.Session().(DraggingWaypoint); !ok {
		t.Fatalf("session = %T, want DraggingWaypoint", m.Session())
	}
	m.Handle(Move(300, 200))
	m.Handle(Up(300, 200))

	c, _ := m.Store.State().Connection(id)
	if len(c.Waypoints) != 1 || c.Waypoints[0] != geom.Pt(300, 200) {
		t.Fatalf("waypoints = %v, want [(300,200)]", c.Waypoints)
	}
	m.Store.Undo()
	if c, _ := m.Store.State().Connection(id); len(c.Waypoints) != 0 {
		t.Error("insert and drag should undo as one step")
	}
	m.Store.Redo()

	m.Handle(Event{Kind: DoubleClick, Screen: geom.Pt(300, 200)})
	if c, _ := m.Store.State().Connection(id); len(c.Waypoints) != 0 {
		t.Errorf("waypoints after double click = %v", c.Waypoints)
	}
}

func TestWaypointAngleSnap(t *testing.T) {
	m, a, b := setup(t)
	id := connect(m, a, b)
	m.Store.Apply("waypoint", func(s board.State) board.State {
		return s.SetWaypoints(id, []geom.Point{{X: 300, Y: 200}})
	})
	m.SelectConnection(id)

	m.Handle(Down(300, 200))
	m.Handle(Event{Kind: PointerMove, Screen: geom.Pt(330, 150), Mods: Mods{Shift: true}})
	m.Handle(Up(330, 150))

	c, _ := m.Store.State().Connection(id)
	// From the start anchor (224,140) the drag points almost due east.
	if got := c.Waypoints[0]; got.Y != 140 {
		t.Errorf("snapped waypoint = %v, want y=140", got)
	}
}

func TestWaypointCapHidesInsert(t *testing.T) {
	m, a, b := setup(t)
	id := connect(m, a, b)
	wps := make([]geom.Point, board.MaxWaypoints)
	for i := range wps {
		wps[i] = geom.Pt(240+30*float64(i), 300)
	}
	m.Store.Apply("waypoints", func(s board.State) board.State { return s.SetWaypoints(id, wps) })

	for i := 0; i < 3; i++ {
		click(m, 255, 300)
	}
	c, _ := m.Store.State().Connection(id)
	if len(c.Waypoints) != board.MaxWaypoints {
		t.Errorf("waypoints = %d, want %d", len(c.Waypoints), board.MaxWaypoints)
	}
	if m.Selection().ConnID != id {
		t.Error("clicking the path should still select the connection")
	}
}

func TestSpacePan(t *testing.T) {
	m, _, _ := setup(t)
	before := m.Store.State()
	m.Handle(Key(" ", Mods{}))
	m.Handle(Down(150, 140))
	if res := m.Handle(Move(170, 170)); !res.ViewChanged {
		t.Error("pan should report a view change")
	}
	m.Handle(Up(170, 170))
	m.Handle(Event{Kind: KeyUp, Key: " "})

	if m.Viewport.X != 20 || m.Viewport.Y != 30 {
		t.Errorf("viewport = (%v,%v), want (20,30)", m.Viewport.X, m.Viewport.Y)
	}
	if !board.Equal(before, m.Store.State()) || m.Store.CanUndo() {
		t.Error("panning must not touch the board")
	}

	m.Handle(Event{Kind: PointerDown, Button: ButtonMiddle, Screen: geom.Pt(0, 0)})
	m.Handle(Move(10, 0))
	m.Handle(Up(10, 0))
	if m.Viewport.X != 30 {
		t.Errorf("middle-button pan: x = %v, want 30", m.Viewport.X)
	}
}

func TestWheelZoomsAboutPointer(t *testing.T) {
	m, _, _ := setup(t)
	at := geom.Pt(200, 100)
	before := m.Viewport.ToCanvas(at)
	res := m.Handle(Event{Kind: Wheel, Screen: at, Delta: -1})
	if !res.ViewChanged || m.Viewport.Scale != 1.2 {
		t.Errorf("scale = %v, want 1.2", m.Viewport.Scale)
	}
	after := m.Viewport.ToCanvas(at)
	if geom.Dist(before, after) > 1e-9 {
		t.Errorf("canvas point under pointer moved from %v to %v", before, after)
	}
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	st := history.NewStore(board.State{}, 0)
	r := resolve.NewStatic(resolve.Descriptor{
		ID:      "https://example.org/iiif/diary/manifest",
		Type:    "Manifest",
		Label:   "Diary",
		Preview: "https://example.org/diary.jpg",
	})
	m := New(st, nil, Config{}, r)

	id := m.Drop(ctx, "https://example.org/iiif/diary/manifest", geom.Pt(50, 60))
	it := item(t, m, id)
	if it.Label() != "Diary" || it.Preview() != "https://example.org/diary.jpg" || it.X != 50 || it.Y != 60 {
		t.Errorf("dropped item = %+v", it)
	}
	if m.Selection().ItemID != id {
		t.Error("dropped item should be selected")
	}

	id = m.Drop(ctx, "https://example.org/unknown", geom.Pt(300, 60))
	it = item(t, m, id)
	if !it.IsPlaceholder() || it.Label() != "https://example.org/unknown" {
		t.Errorf("unresolved drop = %+v", it)
	}
	if !strings.HasPrefix(it.ResourceID, board.PlaceholderURNPrefix) {
		t.Errorf("placeholder resource id = %q", it.ResourceID)
	}
}
