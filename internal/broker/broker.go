package broker

import (
	"errors"
	"sort"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

var errNotAvailable = errors.New("method not available on this build")

// Broker owns the D-Bus connection and the live set of exported device
// subtrees. It is the bus-facing half of the daemon: model mutation
// lives in internal/model, scheduling in internal/scheduler, the
// Broker's job is projecting Directory state onto object paths and
// relaying method calls back as model mutations.
type Broker struct {
	conn *dbus.Conn
	log  hclog.Logger

	managerProps *prop.Properties
	commit       CommitFunc

	mu      sync.Mutex
	devices map[string]*deviceObject // keyed by Device.Sysname
}

// SetCommitFunc installs the function Device.Commit delegates to. The
// daemon's composition root calls this once, after constructing the
// scheduler, to break the import cycle that would otherwise exist
// between internal/broker and internal/scheduler.
func (b *Broker) SetCommitFunc(fn CommitFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commit = fn
}

// New claims BusNameRoot on conn and exports the Manager singleton.
// loadTestDev may be nil, in which case LoadTestDevice is not exported
// at all.
func New(conn *dbus.Conn, log hclog.Logger, loadTestDev LoadTestDeviceFunc) (*Broker, error) {
	reply, err := conn.RequestName(BusNameRoot, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, errors.New("ghostcatd is already running (bus name taken)")
	}

	b := &Broker{
		conn:    conn,
		log:     log.Named("broker"),
		devices: make(map[string]*deviceObject),
	}
	if err := b.exportManager(loadTestDev); err != nil {
		return nil, err
	}
	return b, nil
}

// LinkDevice exports a Device and its full subtree of Profiles,
// Resolutions, Buttons and LEDs, and adds it to Manager.Devices. Calling
// it twice for the same sysname replaces the previous export.
func (b *Broker) LinkDevice(dev *model.Device) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.devices[dev.Sysname]; ok {
		b.unexportLocked(old)
	}

	obj, err := newDeviceObject(b, dev)
	if err != nil {
		return err
	}
	if err := obj.export(); err != nil {
		return err
	}
	b.devices[dev.Sysname] = obj
	b.syncDevicesPropLocked()
	return nil
}

// UnlinkDevice removes a Device's subtree from the bus and from
// Manager.Devices. It is a no-op if the sysname isn't currently linked.
func (b *Broker) UnlinkDevice(sysname string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, ok := b.devices[sysname]
	if !ok {
		return
	}
	b.unexportLocked(obj)
	delete(b.devices, sysname)
	b.syncDevicesPropLocked()
}

// Lookup returns the exported deviceObject for sysname, if any.
func (b *Broker) Lookup(sysname string) (*deviceObject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.devices[sysname]
	return obj, ok
}

// NotifyDirty re-publishes the mutable properties of every profile of
// dev (and of their children) and, when
// force is true, emits Resync on the owning Device regardless of
// whether anything actually changed (used after a failed commit, so
// clients always see the tree re-announced).
func (b *Broker) NotifyDirty(dev *model.Device, force bool) {
	b.mu.Lock()
	obj, ok := b.devices[dev.Sysname]
	b.mu.Unlock()
	if !ok {
		return
	}
	obj.refreshAll()
	if force {
		b.conn.Emit(obj.path, DeviceIface+".Resync")
	}
}

func (b *Broker) unexportLocked(obj *deviceObject) {
	obj.unexport()
}

func (b *Broker) syncDevicesPropLocked() {
	paths := make([]dbus.ObjectPath, 0, len(b.devices))
	for _, obj := range b.devices {
		paths = append(paths, obj.path)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	b.setDevices(paths)
}
