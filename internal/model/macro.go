package model

// MacroEventKind tags one element of a Macro's event sequence.
type MacroEventKind int

const (
	MacroEventNone MacroEventKind = iota
	MacroEventKeyPressed
	MacroEventKeyReleased
	MacroEventWait
)

// MacroMaxEvents is the fixed capacity of a Macro's event sequence. The
// first MacroEventNone terminates the sequence on read, matching the
// original driver's fixed-size event array.
const MacroMaxEvents = 256

// MacroEvent is one step of a Macro: a key press, a key release, a wait
// in milliseconds, or the None terminator.
type MacroEvent struct {
	Kind   MacroEventKind
	Key    uint32 // valid for KeyPressed/KeyReleased
	WaitMS uint32 // valid for Wait
}

// Macro is a fixed-capacity sequence of key events assignable to a
// Button. Macros are owned independently of the Button's action variant
// so that toggling a button between action kinds and back preserves the
// macro for reuse instead of discarding it.
type Macro struct {
	Name   string
	Group  string
	Events []MacroEvent
}

// NewMacro returns an empty macro ready to accept up to MacroMaxEvents
// events.
func NewMacro() *Macro {
	return &Macro{Events: make([]MacroEvent, 0, 8)}
}

// SetEvents replaces the macro's event sequence, truncating at the first
// None terminator and at MacroMaxEvents, whichever comes first.
func (m *Macro) SetEvents(events []MacroEvent) {
	out := make([]MacroEvent, 0, len(events))
	for _, e := range events {
		if e.Kind == MacroEventNone {
			break
		}
		if len(out) >= MacroMaxEvents {
			break
		}
		out = append(out, e)
	}
	m.Events = out
}

// Reduce converts a macro of the shape (modifier presses*, one
// non-modifier press, one non-modifier release, modifier releases* in any
// order) into a (key, modifier mask) pair. ok is false if the macro
// doesn't have that shape, in which case key/mods are zero.
//
// Round-tripping this through Expand and back to Reduce is expected to
// produce an equivalent macro modulo the ordering of modifier press/
// release pairs (spec'd round-trip property).
func (m *Macro) Reduce() (key uint32, mods uint32, ok bool) {
	var (
		haveKey     bool
		keyReleased bool
		pressedMods = map[uint32]bool{}
	)

	for _, e := range m.Events {
		switch e.Kind {
		case MacroEventKeyPressed:
			if bit, isMod := modifierBit(e.Key); isMod {
				mods |= bit
				pressedMods[e.Key] = true
				continue
			}
			if haveKey {
				return 0, 0, false
			}
			haveKey = true
			key = e.Key
		case MacroEventKeyReleased:
			if _, isMod := modifierBit(e.Key); isMod {
				if !pressedMods[e.Key] {
					return 0, 0, false
				}
				delete(pressedMods, e.Key)
				continue
			}
			if !haveKey || keyReleased || e.Key != key {
				return 0, 0, false
			}
			keyReleased = true
		default:
			return 0, 0, false
		}
	}

	if !haveKey || !keyReleased || len(pressedMods) != 0 {
		return 0, 0, false
	}
	return key, mods, true
}

// Expand builds a macro event sequence from a (key, modifier mask) pair:
// every set modifier is pressed (in bit order), then the key is pressed
// and released, then the modifiers are released in the same order.
func Expand(key uint32, mods uint32) *Macro {
	order := []uint32{
		ModLeftCtrl, ModLeftShift, ModLeftAlt, ModLeftMeta,
		ModRightCtrl, ModRightShift, ModRightAlt, ModRightMeta,
	}
	codes := []uint32{
		KeyLeftCtrl, KeyLeftShift, KeyLeftAlt, KeyLeftMeta,
		KeyRightCtrl, KeyRightShift, KeyRightAlt, KeyRightMeta,
	}

	m := NewMacro()
	var active []uint32
	for i, bit := range order {
		if mods&bit != 0 {
			active = append(active, codes[i])
			m.Events = append(m.Events, MacroEvent{Kind: MacroEventKeyPressed, Key: codes[i]})
		}
	}
	m.Events = append(m.Events,
		MacroEvent{Kind: MacroEventKeyPressed, Key: key},
		MacroEvent{Kind: MacroEventKeyReleased, Key: key},
	)
	for _, code := range active {
		m.Events = append(m.Events, MacroEvent{Kind: MacroEventKeyReleased, Key: code})
	}
	return m
}
