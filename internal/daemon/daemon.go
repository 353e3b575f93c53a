// Package daemon is the composition root: it wires the configuration
// model, driver registry, hotplug source, object broker, commit
// scheduler and reactor into one running session-bus service.
package daemon

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/broker"
	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/drivers/generic"
	"github.com/ghostcat-linux/ghostcatd/internal/drivers/testdriver"
	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/hotplug"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
	"github.com/ghostcat-linux/ghostcatd/internal/reactor"
	"github.com/ghostcat-linux/ghostcatd/internal/scheduler"
	"github.com/ghostcat-linux/ghostcatd/internal/testdevice"
)

// Daemon owns every long-lived collaborator and the session-bus
// connection they're exported on.
type Daemon struct {
	log hclog.Logger

	conn *dbus.Conn
	dir  *model.Directory

	registry *driver.Registry
	brk      *broker.Broker
	sched    *scheduler.Scheduler
	react    *reactor.Reactor
	source   *hotplug.Source

	testLoader *testdevice.Loader
}

// New connects to the session bus, claims the well-known name, and wires
// every collaborator together. It does not start the reactor loop; call
// Run for that.
func New(log hclog.Logger) (*Daemon, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	d := &Daemon{
		log:      log,
		conn:     conn,
		dir:      model.NewDirectory(),
		registry: driver.NewRegistry(log),
	}

	testDrv := testdriver.New(log)
	d.registry.Register(driver.Registration{ID: testdriver.ID, Driver: testDrv})
	d.registry.Register(driver.Registration{ID: generic.ID, Driver: generic.New(log)})

	var loadTestDev broker.LoadTestDeviceFunc
	if testdevice.Enabled() {
		d.testLoader = testdevice.NewLoader(testDrv)
		loadTestDev = d.handleLoadTestDevice
	}

	brk, err := broker.New(conn, log, loadTestDev)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("exporting bus objects: %w", err)
	}
	d.brk = brk

	source, err := hotplug.Open(log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening hotplug source: %w", err)
	}
	d.source = source

	d.react = reactor.New(log, source)
	d.react.SetHotplugHandler(d.handleHotplugEvent)
	d.react.SetResolutionPollHandler(d.pollActiveResolutions)

	d.sched = scheduler.New(log, d.react, d.registry, d.brk)
	d.brk.SetCommitFunc(d.sched.Commit)

	return d, nil
}

// Run replays the initial hotplug enumeration and blocks in the reactor
// loop until shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	events, err := hotplug.Enumerate()
	if err != nil {
		d.log.Warn("initial hotplug enumeration failed", "error", err)
	}
	for _, ev := range events {
		d.handleHotplugEvent(ev)
	}

	return d.react.Run(ctx)
}

// Close releases the hotplug socket and bus connection. Call after Run
// returns.
func (d *Daemon) Close() {
	if d.source != nil {
		d.source.Close()
	}
	if d.conn != nil {
		d.conn.Close()
	}
}

func (d *Daemon) handleHotplugEvent(ev hotplug.Event) {
	switch ev.Action {
	case hotplug.ActionAdd:
		d.probeAndLink(ev)
	case hotplug.ActionRemove:
		d.unlinkDevice(ev.Sysname)
	case hotplug.ActionChange:
		// A change event on an already-linked device has nothing for the
		// daemon to react to today: configuration state lives entirely in
		// this process, not in the kernel node. Unlinked devices are
		// treated the same as an add, in case the daemon missed the
		// original add (e.g. it started after the device appeared but
		// before its first "change").
		if d.dir.Lookup(ev.Sysname) == nil {
			d.probeAndLink(ev)
		}
	}
}

func (d *Daemon) probeAndLink(ev hotplug.Event) {
	if d.dir.Lookup(ev.Sysname) != nil {
		return
	}

	dev := model.NewDevice(ev.Sysname)
	if _, err := d.registry.Probe(dev, ev.Identity); err != nil {
		d.log.Debug("no driver claimed device", "sysname", ev.Sysname, "error", err)
		return
	}

	d.dir.Link(dev)
	if err := d.brk.LinkDevice(dev); err != nil {
		d.log.Error("failed to export device on the bus", "sysname", ev.Sysname, "error", err)
		d.dir.Unlink(ev.Sysname)
		return
	}
	d.log.Info("linked device", "sysname", ev.Sysname, "driver", dev.DriverID, "model", dev.ModelString())
}

func (d *Daemon) unlinkDevice(sysname string) {
	dev := d.dir.Lookup(sysname)
	if dev == nil {
		return
	}
	d.brk.UnlinkDevice(sysname)
	d.dir.Unlink(sysname)

	if reg, ok := d.registry.Lookup(dev.DriverID); ok {
		reg.Driver.Remove(dev)
	}
	d.log.Info("unlinked device", "sysname", sysname)
}

func (d *Daemon) pollActiveResolutions() {
	for _, dev := range d.dir.All() {
		reg, ok := d.registry.Lookup(dev.DriverID)
		if !ok {
			continue
		}
		changed, err := reg.Driver.RefreshActiveResolution(dev)
		if err != nil {
			if err != driver.ErrUnsupported {
				d.log.Warn("active resolution refresh failed", "sysname", dev.Sysname, "error", err)
			}
			continue
		}
		if changed != 0 {
			d.brk.NotifyDirty(dev, false)
		}
	}
}

func (d *Daemon) handleLoadTestDevice(raw string) errs.Code {
	previous := d.testLoader.Previous()

	dev, err := d.testLoader.Load([]byte(raw))
	if err != nil {
		d.log.Error("failed to load test device fixture", "error", err)
		return errs.ToCode(err)
	}

	if previous != nil {
		d.unlinkDevice(previous.Sysname)
	}

	d.dir.Link(dev)
	if err := d.brk.LinkDevice(dev); err != nil {
		d.log.Error("failed to export synthetic test device on the bus", "error", err)
		d.dir.Unlink(dev.Sysname)
		return errs.ToCode(err)
	}
	d.log.Info("loaded synthetic test device", "sysname", dev.Sysname)
	return errs.CodeOK
}
