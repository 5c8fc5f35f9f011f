package interact

import (
	"github.com/matzehuels/pinboard/pkg/board"
)

// Key bindings:
//
//	v, c, n            select, connect and note tool
//	g                  toggle grid snap
//	Space (held)       pan with the primary button
//	Delete, Backspace  remove the selection
//	Escape             cancel the gesture, or clear the selection
//	Mod+D              duplicate the selected item
//	Mod+Z              undo
//	Mod+Shift+Z, Mod+Y redo
//	Mod+= or Mod++     zoom in
//	Mod+-              zoom out
//	Mod+0              reset the viewport
//	Mod+] / Mod+[      move the selected item up / down one step
//	Mod+Shift+] / [    bring to front / send to back
//	Alt+L/T/H/V/F      align to the visible area: left, top, centre
//	                   horizontally, centre vertically, fill
//	Alt+Shift+...      the same against the whole canvas
//
// Mod is Ctrl or Meta. Nothing is bound while a text input has focus.

var alignKeys = map[string]board.Alignment{
	"l": board.AlignLeft,
	"t": board.AlignTop,
	"h": board.AlignCenterH,
	"v": board.AlignCenterV,
	"f": board.AlignFill,
}

func (m *Machine) keyDown(ev Event) (Session, *Mutation, bool) {
	if ev.InTextInput {
		return m.session, nil, false
	}
	key := ev.key()
	if key == "Escape" {
		return m.escape()
	}
	if key == " " {
		m.spaceHeld = true
		return m.session, nil, false
	}
	if _, idle := m.session.(Idle); !idle {
		return m.session, nil, false
	}

	switch {
	case ev.Mods.Mod():
		mu, view := m.modKey(key, ev.Mods.Shift)
		return Idle{}, mu, view
	case ev.Mods.Alt:
		return Idle{}, m.alignKey(key, ev.Mods.Shift), false
	}

	switch key {
	case "v":
		return Idle{}, nil, m.SetTool(Select)
	case "c":
		return Idle{}, nil, m.SetTool(Connect)
	case "n":
		return Idle{}, nil, m.SetTool(Note)
	case "g":
		m.Viewport.SetGridSnap(!m.Viewport.GridSnap())
		return Idle{}, nil, true
	case "Delete", "Backspace":
		return Idle{}, m.removeSelection(), false
	}
	return Idle{}, nil, false
}

func (m *Machine) keyUp(ev Event) Session {
	if ev.Key == " " {
		m.spaceHeld = false
	}
	return m.session
}

func (m *Machine) escape() (Session, *Mutation, bool) {
	switch m.session.(type) {
	case Dragging, DraggingWaypoint:
		return Idle{}, &Mutation{Effect: Cancel}, false
	case Connecting, Panning:
		return Idle{}, nil, true
	}
	changed := !m.sel.Empty()
	m.sel = Selection{}
	return Idle{}, nil, changed
}

func (m *Machine) removeSelection() *Mutation {
	switch sel := m.Selection(); {
	case sel.ItemID != "":
		m.sel = Selection{}
		return &Mutation{Label: "remove item", Op: func(s board.State) board.State { return s.RemoveItem(sel.ItemID) }}
	case sel.ConnID != "":
		m.sel = Selection{}
		return &Mutation{Label: "remove connection", Op: func(s board.State) board.State { return s.RemoveConnection(sel.ConnID) }}
	}
	return nil
}

// modKey handles Mod+key. Undo and redo run here directly since they are
// history navigation rather than board operations.
func (m *Machine) modKey(key string, shift bool) (*Mutation, bool) {
	id := m.Selection().ItemID
	switch key {
	case "z":
		if shift {
			m.Store.Redo()
		} else {
			m.Store.Undo()
		}
		return nil, true
	case "y":
		m.Store.Redo()
		return nil, true
	case "d":
		if id == "" {
			return nil, false
		}
		var dup string
		return &Mutation{
			Label: "duplicate item",
			Op: func(s board.State) board.State {
				out, newID := s.DuplicateItem(id)
				dup = newID
				return out
			},
			Then: func() { m.sel = Selection{ItemID: dup} },
		}, true
	case "=", "+":
		m.Viewport.ZoomIn()
		return nil, true
	case "-":
		m.Viewport.ZoomOut()
		return nil, true
	case "0":
		m.Viewport.Reset()
		return nil, true
	case "]", "[":
		if id == "" {
			return nil, false
		}
		var op func(board.State) board.State
		switch {
		case key == "]" && shift:
			op = func(s board.State) board.State { return s.BringToFront(id) }
		case key == "[" && shift:
			op = func(s board.State) board.State { return s.SendToBack(id) }
		case key == "]":
			op = func(s board.State) board.State { return s.ReorderItem(id, board.Forward) }
		default:
			op = func(s board.State) board.State { return s.ReorderItem(id, board.Backward) }
		}
		return &Mutation{Label: "reorder item", Op: op}, false
	}
	return nil, false
}

func (m *Machine) alignKey(key string, canvas bool) *Mutation {
	a, ok := alignKeys[key]
	id := m.Selection().ItemID
	if !ok || id == "" {
		return nil
	}
	frame := m.Visible()
	if canvas {
		frame = m.Config.Canvas
	}
	return &Mutation{Label: "align item", Op: func(s board.State) board.State { return s.AlignItem(id, a, frame) }}
}
