// Package driver defines the polymorphic driver contract: probe, commit,
// remove, set-active-profile, refresh-active-resolution and test-probe,
// plus the ordered registry drivers register into and the post-probe
// sanity check.
package driver

import (
	"errors"
	"fmt"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// ErrNotHandled is returned by Probe when a driver recognizes the device
// isn't one it supports; the registry tries the next registrant.
var ErrNotHandled = fmt.Errorf("device not handled by this driver: %w", errs.ErrNoDevice)

// Identity is the device-descriptor metadata a driver probe is selected
// by: sysname, bus kind, vendor/product and version, read from the
// kernel device-event/sysfs before a driver is invoked.
type Identity struct {
	Sysname   string
	Bus       model.BusKind
	VendorID  uint32
	ProductID uint32
	Version   uint32
}

// Fixture is the parsed JSON test-device document, opaque to this
// package beyond being handed to TestProbe.
type Fixture interface{}

// Driver is the polymorphic contract a vendor (or synthetic) driver
// implements.
type Driver interface {
	// Probe inspects the device, populates dev via InitProfiles and the
	// per-entity setters, and returns nil on success, ErrNotHandled if
	// this driver doesn't recognize the device, or another error for a
	// genuine probe failure. The broker runs Device.SanityCheck after a
	// successful Probe and rejects the device if it fails.
	Probe(dev *model.Device, id Identity) error

	// Commit writes every dirty entity back to hardware. When Commit
	// returns nil, the commit scheduler then calls SetActiveProfile if
	// the active profile still has IsActiveDirty set. After that it
	// clears all dirty flags, whether or not the commit succeeded.
	Commit(dev *model.Device) error

	// Remove releases driver-owned memory. Called exactly once during
	// Device destruction.
	Remove(dev *model.Device)

	// SetActiveProfile asks the hardware to make the profile at index
	// the active one. Returning an error here when IsActiveDirty was set
	// is a driver bug and triggers Resync.
	SetActiveProfile(dev *model.Device, index int) error

	// RefreshActiveResolution re-reads which resolution is active on
	// hardware. Returns (1, nil) if it changed, (0, nil) if unchanged,
	// or a negative/·error pair on failure. Drivers that can't support
	// this return (0, ErrUnsupported).
	RefreshActiveResolution(dev *model.Device) (int, error)

	// TestProbe is the test-device path's entry point; only the
	// synthetic test driver needs to implement it meaningfully. Drivers
	// that don't support synthetic fixtures return ErrUnsupported.
	TestProbe(dev *model.Device, fixture Fixture) error
}

// ErrUnsupported is returned by the optional Driver methods
// (RefreshActiveResolution, TestProbe) when a driver doesn't implement
// that capability.
var ErrUnsupported = errors.New("driver does not support this operation")
