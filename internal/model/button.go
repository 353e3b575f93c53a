package model

// ButtonActionKind tags the variant held by a ButtonAction.
type ButtonActionKind int

const (
	ActionNone ButtonActionKind = iota
	ActionButton
	ActionKey
	ActionSpecial
	ActionMacro
	ActionUnknown
)

// SpecialAction enumerates the vendor-agnostic "special" button functions
// (DPI cycling, profile cycling and similar) a driver may expose.
type SpecialAction uint32

const (
	SpecialUnknown SpecialAction = iota
	SpecialDoubleclick
	SpecialWheelUp
	SpecialWheelDown
	SpecialResolutionUp
	SpecialResolutionDown
	SpecialResolutionCycleUp
	SpecialResolutionCycleDown
	SpecialResolutionAlternate
	SpecialResolutionDefault
	SpecialProfileCycleUp
	SpecialProfileCycleDown
	SpecialProfileUp
	SpecialProfileDown
)

// ButtonAction is the tagged variant a Button can be bound to. Only one
// of Button/Key/Special is meaningful, selected by Kind. An ActionMacro
// action carries no events of its own: they live in Button.Macro, which
// is kept populated even when Kind isn't ActionMacro so that switching a
// button's action kind and back doesn't lose the macro.
type ButtonAction struct {
	Kind    ButtonActionKind
	Button  uint32
	Key     uint32
	Special SpecialAction
}

// ButtonActionCapability is a bit in Button.ActionCapabilities indicating
// which action kinds the hardware accepts for a given button slot.
type ButtonActionCapability uint32

const (
	ButtonCapNone ButtonActionCapability = 1 << iota
	ButtonCapButton
	ButtonCapKey
	ButtonCapSpecial
	ButtonCapMacro
)

// Button is one programmable button slot within a Profile.
type Button struct {
	Index  int
	Action ButtonAction

	// Macro is the button's owned macro allocation. It survives action
	// kind changes: a client can flip a button from macro to "special"
	// and back without losing the macro it had configured.
	Macro *Macro

	ActionCapabilities ButtonActionCapability
	Dirty              bool

	Profile *Profile
}

func newButton(profile *Profile, index int) *Button {
	return &Button{
		Index:              index,
		Action:             ButtonAction{Kind: ActionNone},
		Macro:              NewMacro(),
		ActionCapabilities: ButtonCapButton | ButtonCapKey,
		Profile:            profile,
	}
}

// HasCapability reports whether cap is settable on this button.
func (b *Button) HasCapability(cap ButtonActionCapability) bool {
	return b.ActionCapabilities&cap != 0
}

// SetAction sets the button's action, validating against
// ActionCapabilities and marking the button (and its profile) dirty on
// an actual change. Setting ActionMacro does not replace b.Macro; callers
// mutate it directly via SetMacro.
func (b *Button) SetAction(action ButtonAction) error {
	var required ButtonActionCapability
	switch action.Kind {
	case ActionButton:
		required = ButtonCapButton
	case ActionKey:
		required = ButtonCapKey
	case ActionSpecial:
		required = ButtonCapSpecial
	case ActionMacro:
		required = ButtonCapMacro
	case ActionNone, ActionUnknown:
		required = 0
	}
	if required != 0 && !b.HasCapability(required) {
		return errCapability("button %d does not support that action kind", b.Index)
	}

	if b.Action == action {
		return nil
	}
	b.Action = action
	b.Dirty = true
	if b.Profile != nil {
		b.Profile.Dirty = true
	}
	return nil
}

// SetMacro replaces the button's macro contents in place (the Macro
// pointer itself never changes identity) and marks the button dirty.
func (b *Button) SetMacro(events []MacroEvent) {
	b.Macro.SetEvents(events)
	b.Dirty = true
	if b.Profile != nil {
		b.Profile.Dirty = true
	}
}

func (b *Button) clearDirty() {
	b.Dirty = false
}
