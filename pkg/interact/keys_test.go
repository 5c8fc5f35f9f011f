package interact

import (
	"testing"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func TestToolKeys(t *testing.T) {
	tests := []struct {
		key  string
		want Tool
	}{
		{"c", Connect},
		{"n", Note},
		{"N", Note},
		{"v", Select},
	}
	m, _, _ := setup(t)
	for _, tt := range tests {
		m.Handle(Key(tt.key, Mods{}))
		if m.Tool() != tt.want {
			t.Errorf("after %q tool = %v, want %v", tt.key, m.Tool(), tt.want)
		}
	}
}

func TestShortcutsSuppressedInTextInput(t *testing.T) {
	m, a, _ := setup(t)
	m.Select(a.ID)
	for _, ev := range []Event{
		{Kind: KeyDown, Key: "n"},
		{Kind: KeyDown, Key: "Delete"},
		{Kind: KeyDown, Key: "z", Mods: Mods{Meta: true}},
		{Kind: KeyDown, Key: "=", Mods: Mods{Ctrl: true}},
	} {
		ev.InTextInput = true
		m.Handle(ev)
	}
	if m.Tool() != Select {
		t.Error("tool changed while typing")
	}
	if len(m.Store.State().Items) != 2 {
		t.Error("item deleted while typing")
	}
	if m.Viewport.Scale != 1 {
		t.Error("zoomed while typing")
	}
}

func TestDeleteSelection(t *testing.T) {
	m, a, b := setup(t)
	id := connect(m, a, b)

	m.SelectConnection(id)
	m.Handle(Key("Backspace", Mods{}))
	if n := len(m.Store.State().Connections); n != 0 {
		t.Errorf("connections = %d after delete", n)
	}

	connect(m, a, b)
	m.Select(a.ID)
	m.Handle(Key("Delete", Mods{}))
	s := m.Store.State()
	if _, ok := s.Item(a.ID); ok {
		t.Error("item not removed")
	}
	if len(s.Connections) != 0 {
		t.Error("connections of a removed item must go too")
	}
	if !m.Selection().Empty() {
		t.Error("selection should be cleared")
	}
}

func TestUndoRedoKeys(t *testing.T) {
	m, a, _ := setup(t)
	m.Store.Apply("move", func(s board.State) board.State { return s.MoveItem(a.ID, 0, 0) })

	tests := []struct {
		name string
		ev   Event
		want float64
	}{
		{"undo", Key("z", Mods{Ctrl: true}), 100},
		{"redo shift", Key("Z", Mods{Ctrl: true, Shift: true}), 0},
		{"undo meta", Key("z", Mods{Meta: true}), 100},
		{"redo y", Key("y", Mods{Ctrl: true}), 0},
	}
	for _, tt := range tests {
		m.Handle(tt.ev)
		if got := item(t, m, a.ID).X; got != tt.want {
			t.Errorf("%s: x = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDuplicateKey(t *testing.T) {
	m, a, _ := setup(t)
	m.Select(a.ID)
	res := m.Handle(Key("d", Mods{Ctrl: true}))
	if !res.Changed {
		t.Fatal("duplicate reported no change")
	}
	sel := m.Selection().ItemID
	if sel == "" || sel == a.ID {
		t.Fatalf("selection = %q, want the copy", sel)
	}
	dup := item(t, m, sel)
	if dup.X != a.X+board.DuplicateOffset || dup.Y != a.Y+board.DuplicateOffset {
		t.Errorf("copy at (%v,%v)", dup.X, dup.Y)
	}
}

func TestZoomKeys(t *testing.T) {
	m, _, _ := setup(t)
	mod := Mods{Ctrl: true}
	m.Handle(Key("=", mod))
	if m.Viewport.Scale != 1.2 {
		t.Errorf("zoom in: %v", m.Viewport.Scale)
	}
	m.Handle(Key("-", mod))
	if s := m.Viewport.Scale; s < 0.959 || s > 0.961 {
		t.Errorf("zoom out: %v, want 0.96", s)
	}
	m.Viewport.Pan(40, 40)
	m.Handle(Key("0", mod))
	if m.Viewport.Scale != 1 || m.Viewport.X != 0 || m.Viewport.Y != 0 {
		t.Errorf("reset: %+v", m.Viewport)
	}
	for i := 0; i < 50; i++ {
		m.Handle(Key("+", mod))
	}
	if m.Viewport.Scale != 5 {
		t.Errorf("scale = %v, want clamped to 5", m.Viewport.Scale)
	}
}

func TestReorderKeys(t *testing.T) {
	m, a, b := setup(t)
	c := board.NewNote("c", geom.R(0, 400, 50, 50))
	m.Store.Apply("add", func(s board.State) board.State { return s.AddItem(c) })
	m.Select(a.ID)

	order := func() []string {
		var ids []string
		for _, it := range m.Store.State().Items {
			ids = append(ids, it.ID)
		}
		return ids
	}
	mod := Mods{Ctrl: true}

	m.Handle(Key("]", mod))
	if got := order(); got[1] != a.ID {
		t.Errorf("forward: %v", got)
	}
	m.Handle(Key("[", mod))
	if got := order(); got[0] != a.ID {
		t.Errorf("backward: %v", got)
	}
	m.Handle(Key("]", Mods{Ctrl: true, Shift: true}))
	if got := order(); got[2] != a.ID || got[0] != b.ID {
		t.Errorf("to front: %v", got)
	}
	m.Handle(Key("[", Mods{Ctrl: true, Shift: true}))
	if got := order(); got[0] != a.ID {
		t.Errorf("to back: %v", got)
	}
}

func TestAlignKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want geom.Rect
	}{
		{"left", Key("l", Mods{Alt: true}), geom.R(0, 100, 100, 80)},
		{"top", Key("t", Mods{Alt: true}), geom.R(100, 0, 100, 80)},
		{"center-h", Key("h", Mods{Alt: true}), geom.R(590, 100, 100, 80)},
		{"center-v", Key("v", Mods{Alt: true}), geom.R(100, 360, 100, 80)},
		{"fill", Key("f", Mods{Alt: true}), geom.R(0, 0, 1280, 800)},
		{"fill canvas", Key("F", Mods{Alt: true, Shift: true}), geom.R(0, 0, 2400, 1600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, a, _ := setup(t)
			m.Select(a.ID)
			m.Handle(tt.ev)
			if got := item(t, m, a.ID).Rect(); got != tt.want {
				t.Errorf("rect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlignUsesVisibleArea(t *testing.T) {
	m, a, _ := setup(t)
	m.SetScreen(400, 300)
	m.Viewport.Pan(-200, -100)
	m.Select(a.ID)
	m.Handle(Key("f", Mods{Alt: true}))
	if got := item(t, m, a.ID).Rect(); got != geom.R(200, 100, 400, 300) {
		t.Errorf("rect = %v", got)
	}
}

func TestEscapeClearsSelection(t *testing.T) {
	m, a, _ := setup(t)
	m.Select(a.ID)
	if res := m.Handle(Key("Escape", Mods{})); !res.ViewChanged {
		t.Error("clearing the selection is a view change")
	}
	if !m.Selection().Empty() {
		t.Error("selection not cleared")
	}
}

func TestGridToggle(t *testing.T) {
	m, _, _ := setup(t)
	m.Handle(Key("g", Mods{}))
	if !m.Viewport.GridSnap() {
		t.Error("grid snap not enabled")
	}
	m.Handle(Key("g", Mods{}))
	if m.Viewport.GridSnap() {
		t.Error("grid snap not disabled")
	}
}
