package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// LedIface is the interface name for an Led object.
const LedIface = InterfaceRoot + ".Led"

type ledObject struct {
	b    *Broker
	p    *model.Profile
	led  *model.LED
	path dbus.ObjectPath

	props *prop.Properties
}

func newLedObject(b *Broker, p *model.Profile, led *model.LED, index int) *ledObject {
	return &ledObject{b: b, p: p, led: led, path: LedPath(p.Device.Sysname, p.Index, index)}
}

func (o *ledObject) export() error {
	propsSpec := prop.Map{
		LedIface: {
			"Index":          {Value: uint32(o.led.Index), Writable: false, Emit: prop.EmitFalse},
			"SupportedModes": {Value: uint32(o.led.SupportedModes), Writable: false, Emit: prop.EmitFalse},
			"ColorDepth":     {Value: uint32(o.led.ColorDepth), Writable: false, Emit: prop.EmitFalse},
			"Mode":           {Value: uint32(o.led.Mode), Writable: true, Emit: prop.EmitTrue, Callback: o.onSetMode},
			"Brightness":     {Value: o.led.Brightness, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetBrightness},
			"EffectDuration": {Value: o.led.EffectDuration, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetEffectDuration},
		},
	}
	props := prop.New(o.b.conn, o.path, propsSpec)
	o.props = props

	if err := o.b.conn.Export(o, o.path, LedIface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name: LedIface,
				Methods: []introspect.Method{
					{
						Name: "SetColor",
						Args: []introspect.Arg{
							{Name: "r", Type: "y", Direction: "in"},
							{Name: "g", Type: "y", Direction: "in"},
							{Name: "b", Type: "y", Direction: "in"},
						},
					},
				},
				Properties: []introspect.Property{
					{Name: "Index", Type: "u", Access: "read"},
					{Name: "SupportedModes", Type: "u", Access: "read"},
					{Name: "ColorDepth", Type: "u", Access: "read"},
					{Name: "Mode", Type: "u", Access: "readwrite"},
					{Name: "Brightness", Type: "y", Access: "readwrite"},
					{Name: "EffectDuration", Type: "u", Access: "readwrite"},
				},
			},
		},
	}
	return o.b.conn.Export(introspect.NewIntrospectable(node), o.path, "org.freedesktop.DBus.Introspectable")
}

func (o *ledObject) unexport() {
	o.b.conn.Export(nil, o.path, LedIface)
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Introspectable")
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Properties")
}

func (o *ledObject) refresh() {
	if o.props == nil {
		return
	}
	o.props.SetMust(LedIface, "Mode", uint32(o.led.Mode))
	o.props.SetMust(LedIface, "Brightness", o.led.Brightness)
	o.props.SetMust(LedIface, "EffectDuration", o.led.EffectDuration)
}

// SetColor is the Led.SetColor bus method (color has no meaningful
// "invalid" state to reject, so it returns no status).
func (o *ledObject) SetColor(r, g, b uint8) *dbus.Error {
	o.led.SetColor(model.RGB{R: r, G: g, B: b})
	return nil
}

func (o *ledObject) onSetMode(c *prop.Change) *dbus.Error {
	mode, ok := c.Value.(uint32)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	if err := o.led.SetMode(model.LEDMode(mode)); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (o *ledObject) onSetBrightness(c *prop.Change) *dbus.Error {
	b, ok := c.Value.(byte)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	o.led.SetBrightness(b)
	return nil
}

func (o *ledObject) onSetEffectDuration(c *prop.Change) *dbus.Error {
	ms, ok := c.Value.(uint32)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	o.led.SetEffectDuration(ms)
	return nil
}
