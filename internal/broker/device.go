package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// DeviceIface is the interface name for a Device object.
const DeviceIface = InterfaceRoot + ".Device"

// CommitFunc performs the deferred hardware write-back for a device
// (internal/scheduler wires this in); it returns the bus status code to
// hand back to the Commit() caller.
type CommitFunc func(dev *model.Device) errs.Code

// deviceObject is the exported Device object plus its owned subtree.
type deviceObject struct {
	b    *Broker
	dev  *model.Device
	path dbus.ObjectPath

	props *prop.Properties

	profiles []*profileObject
}

func newDeviceObject(b *Broker, dev *model.Device) (*deviceObject, error) {
	obj := &deviceObject{
		b:    b,
		dev:  dev,
		path: DevicePath(dev.Sysname),
	}
	for i, p := range dev.Profiles {
		obj.profiles = append(obj.profiles, newProfileObject(b, dev, p, i))
	}
	return obj, nil
}

func (o *deviceObject) export() error {
	profilePaths := make([]dbus.ObjectPath, len(o.profiles))
	for i, p := range o.profiles {
		profilePaths[i] = p.path
	}

	propsSpec := prop.Map{
		DeviceIface: {
			"Model":           {Value: o.dev.ModelString(), Writable: false, Emit: prop.EmitFalse},
			"Name":            {Value: o.dev.Name, Writable: false, Emit: prop.EmitFalse},
			"DeviceType":      {Value: uint32(o.dev.Type), Writable: false, Emit: prop.EmitFalse},
			"FirmwareVersion": {Value: o.dev.FirmwareVersion, Writable: false, Emit: prop.EmitFalse},
			"Profiles":        {Value: profilePaths, Writable: false, Emit: prop.EmitFalse},
		},
	}
	props := prop.New(o.b.conn, o.path, propsSpec)
	o.props = props

	if err := o.b.conn.Export(o, o.path, DeviceIface); err != nil {
		return err
	}

	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name: DeviceIface,
				Methods: []introspect.Method{
					{Name: "Commit", Args: []introspect.Arg{{Name: "status", Type: "u", Direction: "out"}}},
				},
				Signals: []introspect.Signal{
					{Name: "Resync"},
				},
				Properties: []introspect.Property{
					{Name: "Model", Type: "s", Access: "read"},
					{Name: "Name", Type: "s", Access: "read"},
					{Name: "DeviceType", Type: "u", Access: "read"},
					{Name: "FirmwareVersion", Type: "s", Access: "read"},
					{Name: "Profiles", Type: "ao", Access: "read"},
				},
			},
		},
	}
	if err := o.b.conn.Export(introspect.NewIntrospectable(node), o.path, "org.freedesktop.DBus.Introspectable"); err != nil {
		return err
	}

	for _, p := range o.profiles {
		if err := p.export(); err != nil {
			return err
		}
	}
	return nil
}

func (o *deviceObject) unexport() {
	for _, p := range o.profiles {
		p.unexport()
	}
	o.b.conn.Export(nil, o.path, DeviceIface)
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Introspectable")
	o.b.conn.Export(nil, o.path, "org.freedesktop.DBus.Properties")
}

// refreshAll republishes every mutable property on this device's Profile
// and child objects. Called after a commit attempt, successful or not.
func (o *deviceObject) refreshAll() {
	for _, p := range o.profiles {
		p.refresh()
	}
}

// Commit is the Device.Commit bus method. The Broker doesn't perform the
// write-back itself: it delegates to the scheduler-installed CommitFunc,
// set once at daemon startup via SetCommitFunc.
func (o *deviceObject) Commit() (uint32, *dbus.Error) {
	if o.b.commit == nil {
		return uint32(errs.CodeSystem), dbus.MakeFailedError(errNotAvailable)
	}
	code := o.b.commit(o.dev)
	return uint32(code), nil
}
