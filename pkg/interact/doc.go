// Package interact turns pointer and keyboard events into board mutations.
//
// A [Machine] holds the active [Tool], the current gesture [Session] and the
// selection. Each event is handled synchronously: the handler computes the
// next session and at most one [Mutation], and the machine runs the mutation
// against its history store. Gestures that span several events (dragging an
// item or a waypoint) are previewed on the store and committed as a single
// history step on release; Escape cancels them and restores the state from
// before the gesture.
//
// Events carry screen coordinates. The machine converts them with its
// viewport, so callers never deal with canvas space.
//
// Gestures that end without a valid target are dropped silently. Nothing in
// this package returns an error for user input.
package interact
