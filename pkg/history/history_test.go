package history

import (
	"testing"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func seeded() (*Store, board.Item, board.Item) {
	a := board.NewNote("a", geom.R(0, 0, 100, 80))
	b := board.NewNote("b", geom.R(300, 0, 100, 80))
	return NewStore(board.State{}.AddItem(a).AddItem(b), 0), a, b
}

func TestUndoRestoresExactState(t *testing.T) {
	st, a, b := seeded()
	var connID string
	ops := []struct {
		name string
		op   Op
	}{
		{"Move", func(s board.State) board.State { return s.MoveItem(a.ID, 40, 40) }},
		{"Resize", func(s board.State) board.State { return s.ResizeItem(b.ID, 10, 20) }},
		{"Connect", func(s board.State) board.State {
			s = s.AddConnection(board.NewConnection(a.ID, board.Bottom, b.ID, board.Top))
			connID = s.Connections[len(s.Connections)-1].ID
			return s
		}},
		{"Waypoints", func(s board.State) board.State {
			return s.SetWaypoints(connID, []geom.Point{{X: 5, Y: 5}})
		}},
		{"Reorder", func(s board.State) board.State { return s.ReorderItem(a.ID, board.Forward) }},
		{"Duplicate", func(s board.State) board.State { out, _ := s.DuplicateItem(b.ID); return out }},
		{"Remove", func(s board.State) board.State { return s.RemoveItem(a.ID) }},
	}
	for _, tt := range ops {
		t.Run(tt.name, func(t *testing.T) {
			before := st.State()
			if !st.Apply(tt.name, tt.op) {
				t.Fatal("Apply reported no change")
			}
			after := st.State()
			if !st.Undo() {
				t.Fatal("Undo failed")
			}
			if got := st.State(); !board.Equal(got, before) {
				t.Errorf("after undo = %+v, want %+v", got, before)
			}
			if !st.Redo() {
				t.Fatal("Redo failed")
			}
			if got := st.State(); !board.Equal(got, after) {
				t.Errorf("after redo = %+v, want %+v", got, after)
			}
		})
	}
}

func TestNoOpNotRecorded(t *testing.T) {
	st, _, _ := seeded()
	if st.Apply("move ghost", func(s board.State) board.State { return s.MoveItem("ghost", 1, 1) }) {
		t.Error("Apply on missing id reported a change")
	}
	if st.CanUndo() {
		t.Error("no-op was recorded in history")
	}
}

func TestApplyClearsRedo(t *testing.T) {
	st, a, _ := seeded()
	st.Apply("m1", func(s board.State) board.State { return s.MoveItem(a.ID, 1, 1) })
	st.Undo()
	if !st.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	st.Apply("m2", func(s board.State) board.State { return s.MoveItem(a.ID, 2, 2) })
	if st.CanRedo() {
		t.Error("new mutation should clear redo")
	}
}

func TestGestureCommitIsOneStep(t *testing.T) {
	st, a, _ := seeded()
	before := st.State()

	st.Begin("drag")
	for i := 1; i <= 5; i++ {
		x := float64(i * 10)
		st.Preview(func(s board.State) board.State { return s.MoveItem(a.ID, x, x) })
	}
	if st.CanUndo() {
		t.Fatal("preview must not touch history")
	}
	if !st.Commit() {
		t.Fatal("Commit reported no change")
	}
	it, _ := st.State().Item(a.ID)
	if it.X != 50 {
		t.Errorf("x after commit = %v, want 50", it.X)
	}
	st.Undo()
	if !board.Equal(st.State(), before) {
		t.Error("one undo should revert the whole drag")
	}
	if st.CanUndo() {
		t.Error("drag recorded more than one step")
	}
}

func TestGestureCancel(t *testing.T) {
	st, a, _ := seeded()
	before := st.State()
	st.Begin("drag")
	st.Preview(func(s board.State) board.State { return s.MoveItem(a.ID, 500, 500) })
	st.Cancel()
	if !board.Equal(st.State(), before) {
		t.Error("Cancel did not restore the baseline")
	}
	if st.CanUndo() || st.InGesture() {
		t.Error("Cancel left history or gesture state behind")
	}
}

func TestGestureWithoutChangeNotRecorded(t *testing.T) {
	st, _, _ := seeded()
	st.Begin("drag")
	if st.Commit() {
		t.Error("empty gesture reported a change")
	}
	if st.CanUndo() {
		t.Error("empty gesture recorded")
	}
}

func TestHistoryLimit(t *testing.T) {
	h := New(3)
	for i := 0; i < 10; i++ {
		h.Push(board.State{})
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
}

func TestReplaceClearsHistory(t *testing.T) {
	st, a, _ := seeded()
	st.Apply("move", func(s board.State) board.State { return s.MoveItem(a.ID, 9, 9) })
	st.Replace(board.State{})
	if st.CanUndo() || st.CanRedo() {
		t.Error("Replace should clear history")
	}
	if len(st.State().Items) != 0 {
		t.Error("Replace did not swap state")
	}
}

func TestSubscribe(t *testing.T) {
	st, a, _ := seeded()
	var calls int
	unsub := st.Subscribe(func(board.State) { calls++ })
	st.Apply("move", func(s board.State) board.State { return s.MoveItem(a.ID, 9, 9) })
	st.Apply("noop", func(s board.State) board.State { return s })
	st.Undo()
	unsub()
	st.Redo()
	if calls != 2 {
		t.Errorf("listener calls = %d, want 2", calls)
	}
}

func TestUndoEmpty(t *testing.T) {
	st := NewStore(board.State{}, 0)
	if st.Undo() || st.Redo() {
		t.Error("undo/redo on empty history should report false")
	}
}
