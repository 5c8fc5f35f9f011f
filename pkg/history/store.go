package history

import (
	"sync"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/observability"
)

// Op is a pure board operation.
type Op func(board.State) board.State

// Store owns the live state of one board and its history.
//
// A Store is safe for concurrent use; the HTTP and MCP adapters share one
// between requests. Listeners registered with Subscribe run after the lock
// is released, in registration order.
type Store struct {
	mu    sync.Mutex
	state board.State
	hist  *History

	// baseline is the pre-gesture state while a gesture is open.
	baseline *board.State
	label    string

	listeners map[int]func(board.State)
	nextID    int
}

// NewStore returns a store holding initial with an empty history.
func NewStore(initial board.State, limit int) *Store {
	return &Store{
		state:     initial.Clone(),
		hist:      New(limit),
		listeners: make(map[int]func(board.State)),
	}
}

// State returns a copy of the live state.
func (s *Store) State() board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Apply runs op on the live state. The previous state is pushed onto the
// undo stack only if op changed something, so no-ops leave history alone.
// An open gesture is committed first. Apply reports whether the state changed.
func (s *Store) Apply(label string, op Op) bool {
	s.mu.Lock()
	s.commitLocked()
	prev := s.state
	next := op(prev.Clone())
	changed := !board.Equal(prev, next)
	if changed {
		s.hist.Push(prev)
		s.state = next
	}
	snap, fns := s.notifyLocked(changed)
	s.mu.Unlock()

	if changed {
		observability.Board().OnMutation(label, len(snap.Items), len(snap.Connections))
	}
	notify(fns, snap)
	return changed
}

// Begin opens a gesture. Until Commit or Cancel, Preview changes the live
// state without touching history. Begin on an open gesture does nothing.
func (s *Store) Begin(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseline != nil {
		return
	}
	b := s.state.Clone()
	s.baseline = &b
	s.label = label
}

// InGesture reports whether a gesture is open.
func (s *Store) InGesture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline != nil
}

// Preview applies op as preview-only state. Without an open gesture it opens
// an unnamed one.
func (s *Store) Preview(op Op) {
	s.mu.Lock()
	if s.baseline == nil {
		b := s.state.Clone()
		s.baseline = &b
	}
	next := op(s.state.Clone())
	changed := !board.Equal(s.state, next)
	s.state = next
	snap, fns := s.notifyLocked(changed)
	s.mu.Unlock()
	notify(fns, snap)
}

// Commit closes the gesture. If the state differs from the pre-gesture
// baseline, the baseline is pushed as a single undo step.
func (s *Store) Commit() bool {
	s.mu.Lock()
	label := s.label
	changed := s.commitLocked()
	snap := s.state
	s.mu.Unlock()
	if changed {
		observability.Board().OnMutation(label, len(snap.Items), len(snap.Connections))
	}
	return changed
}

func (s *Store) commitLocked() bool {
	if s.baseline == nil {
		return false
	}
	base := *s.baseline
	s.baseline = nil
	s.label = ""
	if board.Equal(base, s.state) {
		return false
	}
	s.hist.Push(base)
	return true
}

// Cancel closes the gesture and restores the pre-gesture state.
func (s *Store) Cancel() {
	s.mu.Lock()
	if s.baseline == nil {
		s.mu.Unlock()
		return
	}
	changed := !board.Equal(*s.baseline, s.state)
	s.state = *s.baseline
	s.baseline = nil
	s.label = ""
	snap, fns := s.notifyLocked(changed)
	s.mu.Unlock()
	notify(fns, snap)
}

// Undo restores the previous snapshot. An open gesture is cancelled first.
func (s *Store) Undo() bool {
	return s.step(func(cur board.State) (board.State, bool) { return s.hist.Undo(cur) }, observability.Board().OnUndo)
}

// Redo re-applies the last undone snapshot.
func (s *Store) Redo() bool {
	return s.step(func(cur board.State) (board.State, bool) { return s.hist.Redo(cur) }, observability.Board().OnRedo)
}

func (s *Store) step(fn func(board.State) (board.State, bool), hook func(bool)) bool {
	s.mu.Lock()
	if s.baseline != nil {
		s.state = *s.baseline
		s.baseline = nil
		s.label = ""
	}
	next, ok := fn(s.state)
	if ok {
		s.state = next
	}
	snap, fns := s.notifyLocked(ok)
	s.mu.Unlock()
	hook(ok)
	notify(fns, snap)
	return ok
}

// CanUndo reports whether Undo would change the state.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether Redo would change the state.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Replace swaps in a new state and clears history. Use it for imports and
// board opens, which are not undoable.
func (s *Store) Replace(state board.State) {
	s.mu.Lock()
	s.state = state.Clone()
	s.baseline = nil
	s.label = ""
	s.hist.Clear()
	snap, fns := s.notifyLocked(true)
	s.mu.Unlock()
	notify(fns, snap)
}

// Subscribe registers fn to receive a copy of the state after every change.
// The returned function removes the listener.
func (s *Store) Subscribe(fn func(board.State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notifyLocked snapshots the state and the listeners to call. It must be
// called with mu held.
func (s *Store) notifyLocked(changed bool) (board.State, []func(board.State)) {
	if !changed || len(s.listeners) == 0 {
		return s.state, nil
	}
	fns := make([]func(board.State), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	return s.state.Clone(), fns
}

func notify(fns []func(board.State), snap board.State) {
	for _, fn := range fns {
		fn(snap)
	}
}
