package driver

import (
	hclog "github.com/hashicorp/go-hclog"
	goversion "github.com/hashicorp/go-version"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// Registration binds a stable driver id to its Driver implementation;
// which devices a driver handles is decided by its own Probe. MinFirmwareVersion, when
// set, lets a registrant decline devices whose firmware predates a
// known-good revision instead of probing and risking a wedged device.
type Registration struct {
	ID                string
	Driver            Driver
	MinFirmwareVersion string
}

// Registry is the ordered, first-match-wins list of registered drivers,
// each keyed by a stable string id.
type Registry struct {
	log   hclog.Logger
	order []Registration
}

// NewRegistry returns an empty driver registry.
func NewRegistry(log hclog.Logger) *Registry {
	return &Registry{log: log.Named("registry")}
}

// Register appends a driver registration. Order of registration is
// probe order: the first registrant whose Probe succeeds wins.
func (r *Registry) Register(reg Registration) {
	r.order = append(r.order, reg)
}

// Lookup returns the registration for a driver id, or (zero, false).
func (r *Registry) Lookup(id string) (Registration, bool) {
	for _, reg := range r.order {
		if reg.ID == id {
			return reg, true
		}
	}
	return Registration{}, false
}

// Probe tries every registered driver in order against dev/id, skipping
// a registrant whose MinFirmwareVersion isn't met by dev.FirmwareVersion.
// It returns the id of the driver that successfully probed, or an error
// if every driver rejected the device (ErrNoDevice wrapped) or one
// failed with a non-ENODEV error (returned as-is, the candidate is
// dropped).
func (r *Registry) Probe(dev *model.Device, id Identity) (string, error) {
	for _, reg := range r.order {
		if reg.MinFirmwareVersion != "" && dev.FirmwareVersion != "" {
			if !firmwareAtLeast(dev.FirmwareVersion, reg.MinFirmwareVersion) {
				r.log.Debug("skipping driver, firmware too old",
					"driver", reg.ID, "firmware", dev.FirmwareVersion, "min", reg.MinFirmwareVersion)
				continue
			}
		}

		err := reg.Driver.Probe(dev, id)
		if err == nil {
			dev.DriverID = reg.ID
			if sErr := dev.SanityCheck(); sErr != nil {
				r.log.Error("driver produced an invalid model, rejecting device",
					"driver", reg.ID, "sysname", dev.Sysname, "error", sErr)
				return "", sErr
			}
			return reg.ID, nil
		}
		if err == ErrNotHandled {
			continue
		}
		// A genuine probe failure: stop trying other drivers, the caller
		// logs and drops the candidate.
		return "", err
	}
	return "", errs.ErrNoDevice
}

// firmwareAtLeast reports whether fw >= min under semver-ish comparison.
// Unparsable versions are treated as meeting any minimum (fail open,
// since firmware strings are vendor-free-form and not guaranteed to be
// valid semver).
func firmwareAtLeast(fw, min string) bool {
	fv, err := goversion.NewVersion(fw)
	if err != nil {
		return true
	}
	mv, err := goversion.NewVersion(min)
	if err != nil {
		return true
	}
	return fv.GreaterThanOrEqual(mv)
}
