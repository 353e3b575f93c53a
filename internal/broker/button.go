package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// ButtonIface is the interface name for a Button object.
const ButtonIface = InterfaceRoot + ".Button"

// macroEventWire is the D-Bus struct representation of a model.MacroEvent
// ("(uuu)"): model.MacroEventKind is a plain int, which isn't one of
// godbus's wire-safe integer widths, so it gets narrowed to uint32 here.
type macroEventWire struct {
	Kind   uint32
	Key    uint32
	WaitMS uint32
}

func toWireEvents(events []model.MacroEvent) []macroEventWire {
	out := make([]macroEventWire, len(events))
	for i, e := range events {
		out[i] = macroEventWire{Kind: uint32(e.Kind), Key: e.Key, WaitMS: e.WaitMS}
	}
	return out
}

func fromWireEvents(events []macroEventWire) []model.MacroEvent {
	out := make([]model.MacroEvent, len(events))
	for i, e := range events {
		out[i] = model.MacroEvent{Kind: model.MacroEventKind(e.Kind), Key: e.Key, WaitMS: e.WaitMS}
	}
	return out
}

type buttonObject struct {
	b    *Broker
	p    *model.Profile
	btn  *model.Button
	path dbus.ObjectPath

	props *prop.Properties
}

func newButtonObject(b *Broker, p *model.Profile, btn *model.Button, index int) *buttonObject {
	return &buttonObject{b: b, p: p, btn: btn, path: ButtonPath(p.Device.Sysname, p.Index, index)}
}

func (o *buttonObject) export() error {
	propsSpec := prop.Map{
		ButtonIface: {
			"Index":              {Value: uint32(o.btn.Index), Writable: false, Emit: prop.EmitFalse},
			"ActionCapabilities": {Value: uint32(o.btn.ActionCapabilities), Writable: false, Emit: prop.EmitFalse},
			"ActionType":         {Value: uint32(o.btn.Action.Kind), Writable: false, Emit: prop.EmitTrue},
			"Button":             {Value: o.btn.Action.Button, Writable: false, Emit: prop.EmitTrue},
			"Key":                {Value: o.btn.Action.Key, Writable: false, Emit: prop.EmitTrue},
			"Special":            {Value: uint32(o.btn.Action.Special), Writable: false, Emit: prop.EmitTrue},
		},
	}
	props := prop.New(o.b.conn, o.path, propsSpec)
	o.props = props

	if err := o.b.conn.Export(o, o.path, ButtonIface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name: ButtonIface,
				Methods: []introspect.Method{
					{
						Name: "SetButtonAction",
						Args: []introspect.Arg{
							{Name: "kind", Type: "u", Direction: "in"},
							{Name: "button", Type: "u", Direction: "in"},
							{Name: "key", Type: "u", Direction: "in"},
							{Name: "special", Type: "u", Direction: "in"},
							{Name: "status", Type: "u", Direction: "out"},
						},
					},
					{
						Name: "GetMacro",
						Args: []introspect.Arg{
							{Name: "events", Type: "a(uuu)", Direction: "out"},
						},
					},
					{
						Name: "SetMacro",
						Args: []introspect.Arg{
							{Name: "events", Type: "a(uuu)", Direction: "in"},
							{Name: "status", Type: "u", Direction: "out"},
						},
					},
				},
			},
		},
	}
	return o.b.conn.Export(introspect.NewIntrospectable(node), o.path, "org.freedesktop.DBus.Introspectable")
}

func (o *buttonObject) unexport() {
	o.b.conn.Export(nil, o.path, ButtonIface)
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Introspectable")
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Properties")
}

func (o *buttonObject) refresh() {
	if o.props == nil {
		return
	}
	o.props.SetMust(ButtonIface, "ActionType", uint32(o.btn.Action.Kind))
	o.props.SetMust(ButtonIface, "Button", o.btn.Action.Button)
	o.props.SetMust(ButtonIface, "Key", o.btn.Action.Key)
	o.props.SetMust(ButtonIface, "Special", uint32(o.btn.Action.Special))
}

// SetButtonAction is the Button.SetButtonAction bus method.
func (o *buttonObject) SetButtonAction(kind, button, key, special uint32) (uint32, *dbus.Error) {
	action := model.ButtonAction{
		Kind:    model.ButtonActionKind(kind),
		Button:  button,
		Key:     key,
		Special: model.SpecialAction(special),
	}
	err := o.btn.SetAction(action)
	if err == nil {
		o.refresh()
	}
	return statusOf(err), nil
}

// GetMacro is the Button.GetMacro bus method.
func (o *buttonObject) GetMacro() ([]macroEventWire, *dbus.Error) {
	return toWireEvents(o.btn.Macro.Events), nil
}

// SetMacro is the Button.SetMacro bus method.
func (o *buttonObject) SetMacro(events []macroEventWire) (uint32, *dbus.Error) {
	o.btn.SetMacro(fromWireEvents(events))
	return statusOf(nil), nil
}
