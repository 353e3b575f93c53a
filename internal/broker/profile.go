package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// ProfileIface is the interface name for a Profile object.
const ProfileIface = InterfaceRoot + ".Profile"

// profileObject is the exported Profile object plus its owned children.
type profileObject struct {
	b    *Broker
	dev  *model.Device
	p    *model.Profile
	path dbus.ObjectPath

	props *prop.Properties

	resolutions []*resolutionObject
	buttons     []*buttonObject
	leds        []*ledObject
}

func newProfileObject(b *Broker, dev *model.Device, p *model.Profile, index int) *profileObject {
	obj := &profileObject{
		b:    b,
		dev:  dev,
		p:    p,
		path: ProfilePath(dev.Sysname, index),
	}
	for i, r := range p.Resolutions {
		obj.resolutions = append(obj.resolutions, newResolutionObject(b, p, r, i))
	}
	for i, btn := range p.Buttons {
		obj.buttons = append(obj.buttons, newButtonObject(b, p, btn, i))
	}
	for i, l := range p.LEDs {
		obj.leds = append(obj.leds, newLedObject(b, p, l, i))
	}
	return obj
}

func (o *profileObject) childPaths() (res, btn, led []dbus.ObjectPath) {
	for _, r := range o.resolutions {
		res = append(res, r.path)
	}
	for _, b := range o.buttons {
		btn = append(btn, b.path)
	}
	for _, l := range o.leds {
		led = append(led, l.path)
	}
	return
}

func (o *profileObject) export() error {
	resPaths, btnPaths, ledPaths := o.childPaths()

	propsSpec := prop.Map{
		ProfileIface: {
			"Index":         {Value: uint32(o.p.Index), Writable: false, Emit: prop.EmitFalse},
			"Capabilities":  {Value: uint32(o.p.Capabilities), Writable: false, Emit: prop.EmitFalse},
			"ReportRates":   {Value: append([]uint32{}, o.p.SupportedRates...), Writable: false, Emit: prop.EmitFalse},
			"Resolutions":   {Value: resPaths, Writable: false, Emit: prop.EmitFalse},
			"Buttons":       {Value: btnPaths, Writable: false, Emit: prop.EmitFalse},
			"Leds":          {Value: ledPaths, Writable: false, Emit: prop.EmitFalse},
			"Name":          {Value: o.p.Name, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetName},
			"Disabled":      {Value: !o.p.Enabled, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetDisabled},
			"ReportRate":    {Value: o.p.ReportRate, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetReportRate},
			"AngleSnapping": {Value: o.p.AngleSnapping, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetAngleSnapping},
			"Debounce":      {Value: o.p.Debounce, Writable: true, Emit: prop.EmitTrue, Callback: o.onSetDebounce},
			"IsActive":      {Value: o.p.Active, Writable: false, Emit: prop.EmitTrue},
			"IsDirty":       {Value: o.p.Dirty, Writable: false, Emit: prop.EmitTrue},
		},
	}
	props := prop.New(o.b.conn, o.path, propsSpec)
	o.props = props

	if err := o.b.conn.Export(o, o.path, ProfileIface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name: ProfileIface,
				Methods: []introspect.Method{
					{Name: "SetActive", Args: []introspect.Arg{{Name: "status", Type: "u", Direction: "out"}}},
				},
			},
		},
	}
	if err := o.b.conn.Export(introspect.NewIntrospectable(node), o.path, "org.freedesktop.DBus.Introspectable"); err != nil {
		return err
	}

	for _, r := range o.resolutions {
		if err := r.export(); err != nil {
			return err
		}
	}
	for _, btn := range o.buttons {
		if err := btn.export(); err != nil {
			return err
		}
	}
	for _, l := range o.leds {
		if err := l.export(); err != nil {
			return err
		}
	}
	return nil
}

func (o *profileObject) unexport() {
	for _, r := range o.resolutions {
		r.unexport()
	}
	for _, b := range o.buttons {
		b.unexport()
	}
	for _, l := range o.leds {
		l.unexport()
	}
	o.b.conn.Export(nil, o.path, ProfileIface)
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Introspectable")
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Properties")
}

// refresh re-publishes this profile's and its children's mutable
// properties, used after a commit regardless of outcome.
func (o *profileObject) refresh() {
	if o.props != nil {
		o.props.SetMust(ProfileIface, "Name", o.p.Name)
		o.props.SetMust(ProfileIface, "Disabled", !o.p.Enabled)
		o.props.SetMust(ProfileIface, "ReportRate", o.p.ReportRate)
		o.props.SetMust(ProfileIface, "AngleSnapping", o.p.AngleSnapping)
		o.props.SetMust(ProfileIface, "Debounce", o.p.Debounce)
		o.props.SetMust(ProfileIface, "IsActive", o.p.Active)
		o.props.SetMust(ProfileIface, "IsDirty", o.p.Dirty)
	}
	for _, r := range o.resolutions {
		r.refresh()
	}
	for _, b := range o.buttons {
		b.refresh()
	}
	for _, l := range o.leds {
		l.refresh()
	}
}

// SetActive is the Profile.SetActive bus method.
func (o *profileObject) SetActive() (uint32, *dbus.Error) {
	err := o.dev.SetActiveProfile(o.p.Index)
	if err == nil {
		for _, sib := range o.parentProfiles() {
			sib.refresh()
		}
	}
	return statusOf(err), nil
}

func (o *profileObject) parentProfiles() []*profileObject {
	obj, ok := o.b.Lookup(o.dev.Sysname)
	if !ok {
		return nil
	}
	return obj.profiles
}

func (o *profileObject) onSetName(c *prop.Change) *dbus.Error {
	if !o.p.HasName {
		return dbus.MakeFailedError(errs.ErrCapability)
	}
	name, ok := c.Value.(string)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	o.p.SetName(name)
	return nil
}

func (o *profileObject) onSetDisabled(c *prop.Change) *dbus.Error {
	disabled, ok := c.Value.(bool)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	if err := o.p.SetEnabled(!disabled); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (o *profileObject) onSetReportRate(c *prop.Change) *dbus.Error {
	hz, ok := c.Value.(uint32)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	switch {
	case hz < model.ReportRateMin:
		hz = model.ReportRateMin
	case hz > model.ReportRateMax:
		hz = model.ReportRateMax
	}
	o.p.SetReportRate(hz)
	return nil
}

func (o *profileObject) onSetAngleSnapping(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(int32)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	o.p.SetAngleSnapping(v)
	return nil
}

func (o *profileObject) onSetDebounce(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(int32)
	if !ok {
		return dbus.MakeFailedError(errs.ErrValue)
	}
	o.p.SetDebounce(v)
	return nil
}
