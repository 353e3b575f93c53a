package broker

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
)

// APIVersion is the constant value exposed as Manager.APIVersion.
const APIVersion = 1

// ManagerIface is the D-Bus interface name for the Manager singleton.
const ManagerIface = InterfaceRoot + ".Manager"

// LoadTestDeviceFunc loads a JSON fixture and returns the driver status
// code for the LoadTestDevice bus method, wired in by the daemon's
// composition root (the broker itself doesn't know how to parse
// fixtures).
type LoadTestDeviceFunc func(json string) errs.Code

// manager is the bus-facing object exported at RootPath. Its methods
// implement the <root>.Manager interface.
type manager struct {
	props       *prop.Properties
	loadTestDev LoadTestDeviceFunc
}

// LoadTestDevice implements the developer-build-only Manager method. It
// is only reachable if the Broker registered it (testdevice.Enabled()).
func (m *manager) LoadTestDevice(doc string) (int32, *dbus.Error) {
	if m.loadTestDev == nil {
		return int32(errs.CodeSystem), dbus.MakeFailedError(errNotAvailable)
	}
	return int32(m.loadTestDev(doc)), nil
}

// exportManager exports the Manager singleton object at RootPath,
// including its Properties/Introspectable interfaces and, when
// loadTestDev is non-nil, the LoadTestDevice method.
func (b *Broker) exportManager(loadTestDev LoadTestDeviceFunc) error {
	propsSpec := prop.Map{
		ManagerIface: {
			"APIVersion": {
				Value:    int32(APIVersion),
				Writable: false,
				Emit:     prop.EmitFalse,
			},
			"Devices": {
				Value:    []dbus.ObjectPath{},
				Writable: false,
				Emit:     prop.EmitTrue,
			},
		},
	}
	props := prop.New(b.conn, dbus.ObjectPath(RootPath), propsSpec)
	b.managerProps = props

	m := &manager{props: props, loadTestDev: loadTestDev}
	ifaces := map[string]interface{}{}
	if loadTestDev != nil {
		ifaces[ManagerIface] = m
	}
	for iface, methods := range ifaces {
		if err := b.conn.Export(methods, dbus.ObjectPath(RootPath), iface); err != nil {
			return err
		}
	}

	node := &introspect.Node{
		Name: RootPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			managerIntrospection(loadTestDev != nil),
		},
	}
	return b.conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(RootPath), "org.freedesktop.DBus.Introspectable")
}

func managerIntrospection(withLoadTestDevice bool) introspect.Interface {
	iface := introspect.Interface{
		Name: ManagerIface,
		Properties: []introspect.Property{
			{Name: "APIVersion", Type: "i", Access: "read"},
			{Name: "Devices", Type: "ao", Access: "read"},
		},
	}
	if withLoadTestDevice {
		iface.Methods = append(iface.Methods, introspect.Method{
			Name: "LoadTestDevice",
			Args: []introspect.Arg{
				{Name: "fixture", Type: "s", Direction: "in"},
				{Name: "status", Type: "i", Direction: "out"},
			},
		})
	}
	return iface
}

// setDevices updates Manager.Devices and emits PropertiesChanged.
func (b *Broker) setDevices(paths []dbus.ObjectPath) {
	if b.managerProps == nil {
		return
	}
	b.managerProps.SetMust(ManagerIface, "Devices", paths)
}
