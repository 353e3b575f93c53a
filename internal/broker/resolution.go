package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// ResolutionIface is the interface name for a Resolution object.
const ResolutionIface = InterfaceRoot + ".Resolution"

type resolutionObject struct {
	b    *Broker
	p    *model.Profile
	r    *model.Resolution
	path dbus.ObjectPath

	props *prop.Properties
}

func newResolutionObject(b *Broker, p *model.Profile, r *model.Resolution, index int) *resolutionObject {
	return &resolutionObject{b: b, p: p, r: r, path: ResolutionPath(p.Device.Sysname, p.Index, index)}
}

func (o *resolutionObject) export() error {
	propsSpec := prop.Map{
		ResolutionIface: {
			"Index":        {Value: uint32(o.r.Index), Writable: false, Emit: prop.EmitFalse},
			"Capabilities": {Value: uint32(o.r.Capabilities), Writable: false, Emit: prop.EmitFalse},
			"DPIList":      {Value: append([]uint32{}, o.r.DPIList...), Writable: false, Emit: prop.EmitFalse},
			"DPIX":         {Value: o.r.DPIX, Writable: false, Emit: prop.EmitTrue},
			"DPIY":         {Value: o.r.DPIY, Writable: false, Emit: prop.EmitTrue},
			"IsActive":     {Value: o.r.Active, Writable: false, Emit: prop.EmitTrue},
			"IsDefault":    {Value: o.r.Default, Writable: false, Emit: prop.EmitTrue},
			"Disabled":     {Value: o.r.Disabled, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetDisabled},
		},
	}
	props := prop.New(o.b.conn, o.path, propsSpec)
	o.props = props

	if err := o.b.conn.Export(o, o.path, ResolutionIface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name: ResolutionIface,
				Methods: []introspect.Method{
					{
						Name: "SetDPI",
						Args: []introspect.Arg{
							{Name: "x", Type: "u", Direction: "in"},
							{Name: "y", Type: "u", Direction: "in"},
							{Name: "status", Type: "u", Direction: "out"},
						},
					},
				},
			},
		},
	}
	return o.b.conn.Export(introspect.NewIntrospectable(node), o.path, "org.freedesktop.DBus.Introspectable")
}

func (o *resolutionObject) unexport() {
	o.b.conn.Export(nil, o.path, ResolutionIface)
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Introspectable")
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Properties")
}

func (o *resolutionObject) refresh() {
	if o.props == nil {
		return
	}
	o.props.SetMust(ResolutionIface, "DPIX", o.r.DPIX)
	o.props.SetMust(ResolutionIface, "DPIY", o.r.DPIY)
	o.props.SetMust(ResolutionIface, "IsActive", o.r.Active)
	o.props.SetMust(ResolutionIface, "IsDefault", o.r.Default)
	o.props.SetMust(ResolutionIface, "Disabled", o.r.Disabled)
}

// SetDPI is the Resolution.SetDPI bus method.
func (o *resolutionObject) SetDPI(x, y uint32) (uint32, *dbus.Error) {
	err := o.r.SetDPI(x, y)
	if err == nil {
		o.refresh()
	}
	return statusOf(err), nil
}

func (o *resolutionObject) onSetDisabled(c *prop.Change) *dbus.Error {
	disabled, ok := c.Value.(bool)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	if err := o.r.SetDisabled(disabled); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}
