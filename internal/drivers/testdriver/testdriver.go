// Package testdriver implements the synthetic driver behind the
// test-device path: TestProbe copies a JSON fixture into driver-private
// state and populates the configuration model exactly as a hardware
// probe would.
package testdriver

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
	"github.com/ghostcat-linux/ghostcatd/internal/testdevice"
)

// ID is this driver's registry key.
const ID = "test"

// privateState is the driver-owned data attached to Device.DriverData for
// every device this driver probed: the commit-failure toggle used by the
// commit-failure-resync test scenario, and the poll counter backing
// RefreshActiveResolution's "changes on the Nth poll" test hook.
type privateState struct {
	failNextCommit bool
	pollCount      int
	pollChangeAt   int // 0 disables the synthetic change
	activeResIndex int // a single index; no method of this driver reads or writes it
}

// Driver is the synthetic test-device driver. Probe always returns
// driver.ErrNotHandled since it never participates in hardware hotplug
// probing; it is only reachable through TestProbe.
type Driver struct {
	log hclog.Logger
}

// New returns a test driver.
func New(log hclog.Logger) *Driver {
	return &Driver{log: log.Named("driver.test")}
}

func (d *Driver) Probe(dev *model.Device, id driver.Identity) error {
	return driver.ErrNotHandled
}

// Commit honors the privateState.failNextCommit toggle set by
// SetFailNextCommit, used by the commit-failure/resync test scenario.
func (d *Driver) Commit(dev *model.Device) error {
	ps := state(dev)
	if ps.failNextCommit {
		ps.failNextCommit = false
		return errCommitFailed
	}
	return nil
}

func (d *Driver) Remove(dev *model.Device) {
	dev.DriverData = nil
}

func (d *Driver) SetActiveProfile(dev *model.Device, index int) error {
	return nil
}

// RefreshActiveResolution reports a change once pollCount reaches
// pollChangeAt, for the active-resolution-polling test scenario; it is a
// no-op (always unchanged) otherwise.
func (d *Driver) RefreshActiveResolution(dev *model.Device) (int, error) {
	ps := state(dev)
	ps.pollCount++
	if ps.pollChangeAt != 0 && ps.pollCount == ps.pollChangeAt {
		return 1, nil
	}
	return 0, nil
}

// TestProbe copies fixture into the model identically to a hardware
// probe: allocating profiles/resolutions/buttons/LEDs and populating
// them from the JSON document.
func (d *Driver) TestProbe(dev *model.Device, fixture driver.Fixture) error {
	fx, ok := fixture.(*testdevice.Fixture)
	if !ok {
		return errBadFixture
	}

	dev.DriverData = &privateState{}
	dev.Name = fx.Name
	if dev.Name == "" {
		dev.Name = "Synthetic Test Device"
	}
	dev.Type = parseDeviceType(fx.DeviceType)
	dev.Bus = model.BusUnknown

	n := len(fx.Profiles)
	if n == 0 {
		n = 1
	}
	dev.InitProfiles(n)

	haveActive := false
	for i, pf := range fx.Profiles {
		p := dev.Profiles[i]
		p.SetName(pf.Name)
		p.Enabled = !pf.Disabled
		p.Capabilities = model.ProfileCapDisable | model.ProfileCapSetDefault
		p.ReportRate = pf.Hz
		if p.ReportRate == 0 {
			p.ReportRate = 1000
		}
		p.SupportedRates = pf.ReportRates
		if len(p.SupportedRates) == 0 {
			p.SupportedRates = []uint32{125, 250, 500, 1000}
		}
		if pf.Active && p.Enabled {
			p.Active = true
			haveActive = true
		}

		applyResolutions(p, pf.Resolutions)
		applyButtons(p, pf.Buttons)
		applyLEDs(p, pf.LEDs)
	}
	if !haveActive {
		dev.Profiles[0].Active = true
	}
	if len(fx.Profiles) == 0 {
		p := dev.Profiles[0]
		p.ReportRate = 1000
		p.SupportedRates = []uint32{125, 250, 500, 1000}
	}

	return nil
}

func applyResolutions(p *model.Profile, fixtures []testdevice.ResolutionFixture) {
	p.InitResolutions(len(fixtures))
	haveActive, haveDefault := false, false
	for i, rf := range fixtures {
		r := p.Resolutions[i]
		r.Capabilities = model.ResolutionCapSeparateXY | model.ResolutionCapDisable
		min, max := rf.DPIMin, rf.DPIMax
		if min == 0 {
			min = 400
		}
		if max == 0 {
			max = 8000
		}
		r.DPIList = model.GenerateDPIList(min, max)
		x, y := rf.XRes, rf.YRes
		if x == 0 {
			x = r.DPIList[0]
			y = x
		}
		r.DPIX, r.DPIY = x, y
		if rf.Active {
			r.Active = true
			haveActive = true
		}
		if rf.Default {
			r.Default = true
			haveDefault = true
		}
	}
	if len(p.Resolutions) > 0 {
		if !haveActive {
			p.Resolutions[0].Active = true
		}
		if !haveDefault {
			p.Resolutions[0].Default = true
		}
	}
}

func applyButtons(p *model.Profile, fixtures []testdevice.ButtonFixture) {
	p.InitButtons(len(fixtures))
	for i, bf := range fixtures {
		b := p.Buttons[i]
		b.ActionCapabilities = model.ButtonCapButton | model.ButtonCapKey |
			model.ButtonCapSpecial | model.ButtonCapMacro
		switch bf.ActionType {
		case "button":
			b.Action = model.ButtonAction{Kind: model.ActionButton, Button: bf.Button}
		case "key":
			b.Action = model.ButtonAction{Kind: model.ActionKey, Key: bf.Key}
		case "special":
			b.Action = model.ButtonAction{Kind: model.ActionSpecial, Special: model.SpecialAction(bf.Special)}
		case "macro":
			events := make([]model.MacroEvent, 0, len(bf.Macro))
			for _, mf := range bf.Macro {
				switch mf.Type {
				case "press":
					events = append(events, model.MacroEvent{Kind: model.MacroEventKeyPressed, Key: mf.Key})
				case "release":
					events = append(events, model.MacroEvent{Kind: model.MacroEventKeyReleased, Key: mf.Key})
				case "wait":
					events = append(events, model.MacroEvent{Kind: model.MacroEventWait, WaitMS: mf.WaitMS})
				}
			}
			b.Macro.SetEvents(events)
			b.Action = model.ButtonAction{Kind: model.ActionMacro}
		default:
			b.Action = model.ButtonAction{Kind: model.ActionNone}
		}
	}
}

func applyLEDs(p *model.Profile, fixtures []testdevice.LEDFixture) {
	p.InitLEDs(len(fixtures))
	for i, lf := range fixtures {
		l := p.LEDs[i]
		l.SupportedModes = model.LEDCapOff | model.LEDCapOn | model.LEDCapCycle | model.LEDCapBreathing
		l.ColorDepth = model.LEDColorDepthRGB888
		l.Color = model.RGB{R: lf.R, G: lf.G, B: lf.B}
		l.Brightness = lf.Brightness
		l.EffectDuration = lf.EffectDuration
		switch lf.Mode {
		case "on":
			l.Mode = model.LEDModeOn
		case "cycle":
			l.Mode = model.LEDModeCycle
		case "breathing":
			l.Mode = model.LEDModeBreathing
		default:
			l.Mode = model.LEDModeOff
		}
	}
}

func parseDeviceType(s string) model.DeviceType {
	switch s {
	case "mouse":
		return model.DeviceTypeMouse
	case "keyboard":
		return model.DeviceTypeKeyboard
	case "other":
		return model.DeviceTypeOther
	default:
		return model.DeviceTypeUnspecified
	}
}

func state(dev *model.Device) *privateState {
	ps, ok := dev.DriverData.(*privateState)
	if !ok {
		ps = &privateState{}
		dev.DriverData = ps
	}
	return ps
}

// SetFailNextCommit arms or disarms the commit-failure test hook,
// letting tests exercise the commit-failure/Resync scenario without a
// real hardware fault.
func SetFailNextCommit(dev *model.Device, fail bool) {
	state(dev).failNextCommit = fail
}

// SetResolutionPollChange arms the RefreshActiveResolution test hook to
// report a change on the Nth call.
func SetResolutionPollChange(dev *model.Device, nthCall int) {
	state(dev).pollChangeAt = nthCall
}
