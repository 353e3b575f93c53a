// Package generic implements a conservative, read-mostly driver that
// claims any HID raw device no vendor-specific driver recognized, so a
// probed device always gets some object tree instead of vanishing
// silently. It never reports ENODEV from Probe.
package generic

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// ID is this driver's registry key.
const ID = "generic"

// Driver is the fallback, single-profile, no-extras driver.
type Driver struct {
	log hclog.Logger
}

// New returns a generic driver.
func New(log hclog.Logger) *Driver {
	return &Driver{log: log.Named("driver.generic")}
}

// Probe populates a single, always-active profile with the HID-standard
// report rate list. It never returns driver.ErrNotHandled: it is meant
// to be registered last, as a catch-all.
func (d *Driver) Probe(dev *model.Device, id driver.Identity) error {
	dev.Bus = id.Bus
	dev.VendorID = id.VendorID
	dev.ProductID = id.ProductID
	dev.Version = id.Version
	if dev.Name == "" {
		dev.Name = "Unknown HID device"
	}
	if dev.Type == model.DeviceTypeUnspecified {
		dev.Type = model.DeviceTypeOther
	}

	dev.InitProfiles(1)
	p := dev.Profiles[0]
	p.Active = true
	p.SupportedRates = []uint32{125, 250, 500, 1000}
	p.ReportRate = 1000
	return nil
}

// Commit is a no-op: the generic driver has nothing vendor-specific to
// write back.
func (d *Driver) Commit(dev *model.Device) error {
	return nil
}

// Remove releases nothing; the generic driver keeps no private state.
func (d *Driver) Remove(dev *model.Device) {}

// SetActiveProfile is a no-op beyond acknowledging the request: a
// single-profile device is always "active".
func (d *Driver) SetActiveProfile(dev *model.Device, index int) error {
	return nil
}

// RefreshActiveResolution reports unsupported: the generic driver
// exposes no resolutions.
func (d *Driver) RefreshActiveResolution(dev *model.Device) (int, error) {
	return 0, driver.ErrUnsupported
}

// TestProbe reports unsupported: synthetic fixtures are handled by the
// dedicated test driver.
func (d *Driver) TestProbe(dev *model.Device, fixture driver.Fixture) error {
	return driver.ErrUnsupported
}
