// Package board is the spatial graph model of a research board: items pinned
// on a free-form canvas and the typed connections between them.
//
// # Overview
//
// A [State] holds an ordered slice of [Item] values and an ordered slice of
// [Connection] values. Item order is the z-order: later items are drawn on
// top, and the reorder operations mutate it.
//
// Items share positional fields (X, Y, W, H, Opacity, Locked) and carry a
// tagged payload describing what they show:
//
//   - [NoteItem]: free text typed on the board
//   - [ResourceItem]: an archival resource with borrowed preview references
//   - [CompositeItem]: a composited view whose layers are opaque to the board
//
// # Value Semantics
//
// Every operation is a method on a State value that returns a new State. The
// receiver is never modified and no slice is shared with the result, so a
// previous State can be kept as an undo snapshot without cloning:
//
//	s := board.State{}
//	note := board.NewNote("check provenance", geom.R(0, 0, 160, 96))
//	s = s.AddItem(note)
//	s = s.MoveItem(note.ID, 48, 48)
//
// Operations addressing an unknown id return the receiver unchanged. That
// makes replaying stale UI events harmless.
//
// # Invariants
//
// After any operation:
//
//   - item ids are unique and every item has W > 0 and H > 0
//   - no connection is a self loop and both endpoints exist
//   - no connection holds more than [MaxWaypoints] waypoints
//
// [State.Sanitize] restores these invariants on untrusted input such as a
// decoded board file.
//
// # Templates
//
// [State.ApplyTemplate] arranges items in one of three fixed layouts: grid,
// sequence and comparison. No other layout algorithm is provided.
package board
