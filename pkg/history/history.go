// Package history provides snapshot-based undo and redo for board state.
//
// [History] is the bare pair of stacks. [Store] owns a live [board.State]
// together with its History and is the only way interaction code mutates a
// board: every change goes through [Store.Apply] or a gesture
// ([Store.Begin], [Store.Preview], [Store.Commit], [Store.Cancel]).
//
// Pan, zoom, tool and selection changes never reach a Store, so they are
// never recorded.
package history

import "github.com/matzehuels/pinboard/pkg/board"

// DefaultLimit is the default number of undo steps kept.
const DefaultLimit = 100

// History holds undo and redo stacks of board snapshots.
// The zero value is usable and keeps DefaultLimit steps.
type History struct {
	undo  []board.State
	redo  []board.State
	limit int
}

// New returns an empty history keeping at most limit undo steps.
// A non-positive limit selects DefaultLimit.
func New(limit int) *History {
	return &History{limit: limit}
}

func (h *History) max() int {
	if h.limit <= 0 {
		return DefaultLimit
	}
	return h.limit
}

// Push records prev as the state before a new mutation and clears the redo
// stack. The oldest snapshot is dropped once the limit is exceeded.
func (h *History) Push(prev board.State) {
	h.undo = append(h.undo, prev.Clone())
	if over := len(h.undo) - h.max(); over > 0 {
		h.undo = append(h.undo[:0:0], h.undo[over:]...)
	}
	h.redo = nil
}

// Undo pops the most recent snapshot and moves cur onto the redo stack.
// It reports false when there is nothing to undo.
func (h *History) Undo(cur board.State) (board.State, bool) {
	if len(h.undo) == 0 {
		return cur, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur.Clone())
	return prev.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(cur board.State) (board.State, bool) {
	if len(h.redo) == 0 {
		return cur, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur.Clone())
	return next.Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undo steps held.
func (h *History) Len() int { return len(h.undo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
