package model

import (
	"fmt"
	"sync/atomic"
)

// BusKind identifies the transport a Device is attached over.
type BusKind int

const (
	BusUnknown BusKind = iota
	BusUSB
	BusBluetooth
)

func (b BusKind) String() string {
	switch b {
	case BusUSB:
		return "usb"
	case BusBluetooth:
		return "bluetooth"
	default:
		return "unknown"
	}
}

// DeviceType classifies the kind of HID peripheral a Device represents.
type DeviceType uint32

const (
	DeviceTypeUnspecified DeviceType = iota
	DeviceTypeOther
	DeviceTypeMouse
	DeviceTypeKeyboard
)

// Device represents one physical HID peripheral. Context exclusively
// owns Devices; each Device exclusively owns its Profile slice.
// DriverData is opaque storage for the owning driver's private state,
// released by the driver's Remove callback.
type Device struct {
	Sysname string
	Name    string
	Bus     BusKind

	VendorID  uint32
	ProductID uint32
	Version   uint32

	Type            DeviceType
	FirmwareVersion string

	Profiles []*Profile

	// DriverID is the registry key of the driver that probed this
	// device, recorded so Commit/SetActiveProfile/etc. route back to the
	// same driver.
	DriverID string

	// DriverData is owned exclusively by the driver that probed this
	// device; only the driver's own methods and the sanity check read it.
	DriverData interface{}

	refcount int32
	linked   bool
}

// NewDevice allocates a Device with no profiles. Drivers populate it via
// InitProfiles during Probe.
func NewDevice(sysname string) *Device {
	return &Device{Sysname: sysname, refcount: 1}
}

// ModelString renders the "bus:VID:PID:version" identity string exposed
// as the Device's Model property.
func (d *Device) ModelString() string {
	if d.Bus == BusUnknown {
		return "unknown"
	}
	return fmt.Sprintf("%s:%04x:%04x:%d", d.Bus, d.VendorID, d.ProductID, d.Version)
}

// InitProfiles allocates n Profile children, replacing any existing
// ones. Called only from a driver's Probe implementation.
func (d *Device) InitProfiles(n int) {
	d.Profiles = make([]*Profile, n)
	for i := range d.Profiles {
		d.Profiles[i] = newProfile(d, i)
	}
}

// ActiveProfile returns the profile with Active set, or nil if none is
// (which is itself a sanity-check failure once probing has completed).
func (d *Device) ActiveProfile() *Profile {
	for _, p := range d.Profiles {
		if p.Active {
			return p
		}
	}
	return nil
}

// SetActiveProfile marks the profile at index active and every other
// profile inactive, enforcing mutual exclusivity. A disabled profile may
// not become active. On a single-profile device the fast path still
// marks the profile's is_active_dirty/dirty flags even though no actual
// state changes, so drivers that key off dirty flags still run their
// activation path.
func (d *Device) SetActiveProfile(index int) error {
	if index < 0 || index >= len(d.Profiles) {
		return errValue("profile index %d out of range", index)
	}
	target := d.Profiles[index]
	if !target.Enabled {
		return errValue("profile %d is disabled and cannot be made active", index)
	}

	if len(d.Profiles) == 1 {
		target.IsActiveDirty = true
		target.Dirty = true
		target.Active = true
		return nil
	}

	if target.Active {
		return nil
	}
	for _, p := range d.Profiles {
		if p.Active {
			p.Active = false
			p.IsActiveDirty = true
			p.Dirty = true
		}
	}
	target.Active = true
	target.IsActiveDirty = true
	target.Dirty = true
	return nil
}

// SanityCheck verifies the invariants a driver's Probe must establish:
// 1-16 profiles, exactly one active, each profile's
// resolution count <=16, each resolution has a non-empty DPI list, each
// profile has a non-empty report-rate list, and no profile already
// dirty. Failure here means the driver has a bug; the caller rejects the
// device and logs it, it does not panic.
func (d *Device) SanityCheck() error {
	if len(d.Profiles) < 1 || len(d.Profiles) > ProfileMaxCount {
		return errImplementation("device %s: num_profiles=%d out of [1,%d]", d.Sysname, len(d.Profiles), ProfileMaxCount)
	}

	activeCount := 0
	for _, p := range d.Profiles {
		if p.Active {
			activeCount++
		}
		if len(p.Resolutions) > ProfileMaxResolutions {
			return errImplementation("device %s: profile %d has too many resolutions", d.Sysname, p.Index)
		}
		for _, r := range p.Resolutions {
			if len(r.DPIList) == 0 {
				return errImplementation("device %s: profile %d resolution %d has empty dpi list", d.Sysname, p.Index, r.Index)
			}
		}
		if len(p.Resolutions) > 0 {
			activeRes, defaultRes := 0, 0
			for _, r := range p.Resolutions {
				if r.Active {
					activeRes++
				}
				if r.Default {
					defaultRes++
				}
			}
			if activeRes != 1 || defaultRes != 1 {
				return errImplementation("device %s: profile %d must have exactly one active and one default resolution", d.Sysname, p.Index)
			}
		}
		if len(p.SupportedRates) == 0 {
			return errImplementation("device %s: profile %d has empty report-rate list", d.Sysname, p.Index)
		}
		if p.Dirty {
			return errImplementation("device %s: profile %d is dirty while probing", d.Sysname, p.Index)
		}
	}

	if activeCount != 1 {
		return errImplementation("device %s: expected exactly one active profile, got %d", d.Sysname, activeCount)
	}
	return nil
}

// ClearAllDirty clears dirty flags across the device and every
// descendant. Called by the commit scheduler after a driver's Commit
// returns, regardless of success or failure (the broker re-announces
// properties via Resync on failure instead).
func (d *Device) ClearAllDirty() {
	for _, p := range d.Profiles {
		p.clearDirty()
		for _, r := range p.Resolutions {
			r.clearDirty()
		}
		for _, b := range p.Buttons {
			b.clearDirty()
		}
		for _, l := range p.LEDs {
			l.clearDirty()
		}
	}
}

// Ref increments the device's external reference count, used by the
// commit scheduler to keep a Device alive across a deferred task even if
// it's unlinked (hotplug-removed) in the meantime.
func (d *Device) Ref() *Device {
	atomic.AddInt32(&d.refcount, 1)
	return d
}

// Unref decrements the reference count. The broker is responsible for
// releasing driver resources (via the owning driver's Remove) once the
// count reaches zero; Unref itself only tracks the count.
func (d *Device) Unref() int32 {
	return atomic.AddInt32(&d.refcount, -1)
}

// RefCount returns the current reference count, primarily for tests.
func (d *Device) RefCount() int32 {
	return atomic.LoadInt32(&d.refcount)
}

// Linked reports whether the device is currently present in the
// Context's keyed map and attached to the bus tree. Linked state is
// independent of refcount: a commit task may hold a reference to an
// unlinked device.
func (d *Device) Linked() bool {
	return d.linked
}

// Link marks the device as linked. Called by the directory that owns
// the keyed device map.
func (d *Device) Link() {
	d.linked = true
}

// Unlink marks the device as unlinked.
func (d *Device) Unlink() {
	d.linked = false
}
