package interact

import (
	"strings"

	"github.com/matzehuels/pinboard/pkg/geom"
)

// EventKind identifies an input event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	DoubleClick
	Wheel
	KeyDown
	KeyUp
)

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Mods is the modifier key state of an event.
type Mods struct {
	Shift, Alt, Ctrl, Meta bool
}

// Mod reports whether the platform command modifier (Ctrl or Meta) is held.
func (m Mods) Mod() bool { return m.Ctrl || m.Meta }

// Event is one input event in screen coordinates.
type Event struct {
	Kind   EventKind
	Screen geom.Point
	Button Button
	Mods   Mods
	// Key is the key name for key events: a single character, "Escape",
	// "Delete", "Backspace" or " " for space.
	Key string
	// Delta is the wheel delta; negative values zoom in.
	Delta float64
	// InTextInput is set when focus is in a text field. Keyboard shortcuts
	// are ignored then.
	InTextInput bool
}

// key returns the key name with single letters lower-cased, so Shift does
// not change which binding matches.
func (e Event) key() string {
	if len(e.Key) == 1 {
		return strings.ToLower(e.Key)
	}
	return e.Key
}

// Convenience constructors, mainly for adapters and tests.

func Down(x, y float64) Event { return Event{Kind: PointerDown, Screen: geom.Pt(x, y)} }
func Move(x, y float64) Event { return Event{Kind: PointerMove, Screen: geom.Pt(x, y)} }
func Up(x, y float64) Event   { return Event{Kind: PointerUp, Screen: geom.Pt(x, y)} }

// Key returns a key-down event.
func Key(key string, mods Mods) Event { return Event{Kind: KeyDown, Key: key, Mods: mods} }
