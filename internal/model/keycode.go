package model

// Linux input-event key codes relevant to macro reduction, mirroring the
// subset of include/uapi/linux/input-event-codes.h needed to recognize
// modifier presses in a Macro. Values match the kernel's KEY_* constants.
const (
	KeyLeftCtrl   uint32 = 29
	KeyLeftShift  uint32 = 42
	KeyRightShift uint32 = 54
	KeyLeftAlt    uint32 = 56
	KeyRightCtrl  uint32 = 97
	KeyRightAlt   uint32 = 100
	KeyLeftMeta   uint32 = 125
	KeyRightMeta  uint32 = 126
)

// Modifier bits, ordered to match the USB HID boot-keyboard modifier byte
// (left-to-right: Ctrl, Shift, Alt, Meta, then the right-hand variants).
const (
	ModLeftCtrl uint32 = 1 << iota
	ModLeftShift
	ModLeftAlt
	ModLeftMeta
	ModRightCtrl
	ModRightShift
	ModRightAlt
	ModRightMeta
)

// modifierBit returns the modifier bit for a KEY_* code, and ok=false if
// the code isn't a recognized modifier.
func modifierBit(key uint32) (bit uint32, ok bool) {
	switch key {
	case KeyLeftCtrl:
		return ModLeftCtrl, true
	case KeyLeftShift:
		return ModLeftShift, true
	case KeyLeftAlt:
		return ModLeftAlt, true
	case KeyLeftMeta:
		return ModLeftMeta, true
	case KeyRightCtrl:
		return ModRightCtrl, true
	case KeyRightShift:
		return ModRightShift, true
	case KeyRightAlt:
		return ModRightAlt, true
	case KeyRightMeta:
		return ModRightMeta, true
	default:
		return 0, false
	}
}
