package testdriver

import (
	"testing"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
	"github.com/ghostcat-linux/ghostcatd/internal/testdevice"
)

func newTestDriver() *Driver {
	return New(hclog.NewNullLogger())
}

func TestProbeAlwaysDeclines(t *testing.T) {
	d := newTestDriver()
	if err := d.Probe(model.NewDevice("hidraw0"), driver.Identity{}); err == nil {
		t.Fatalf("Probe() succeeded, want ErrNotHandled")
	}
}

func TestTestProbeRejectsWrongFixtureType(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	if err := d.TestProbe(dev, "not a fixture"); err == nil {
		t.Fatalf("TestProbe() succeeded with a non-fixture argument")
	}
}

func TestTestProbeDefaultsWithNoProfiles(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	fx := &testdevice.Fixture{Name: "Widget"}

	if err := d.TestProbe(dev, fx); err != nil {
		t.Fatalf("TestProbe: %v", err)
	}
	if len(dev.Profiles) != 1 {
		t.Fatalf("len(Profiles) = %d, want 1 (default slot)", len(dev.Profiles))
	}
	if !dev.Profiles[0].Active {
		t.Fatalf("sole profile not marked Active when the fixture specified none")
	}
	if dev.Name != "Widget" {
		t.Fatalf("Name = %q, want Widget", dev.Name)
	}
}

func TestTestProbeHonorsExplicitActiveProfile(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	fx := &testdevice.Fixture{
		Profiles: []testdevice.ProfileFixture{
			{Name: "one"},
			{Name: "two", Active: true},
		},
	}

	if err := d.TestProbe(dev, fx); err != nil {
		t.Fatalf("TestProbe: %v", err)
	}
	if dev.Profiles[0].Active {
		t.Fatalf("profile 0 marked Active, fixture asked for profile 1")
	}
	if !dev.Profiles[1].Active {
		t.Fatalf("profile 1 not marked Active despite fixture.Active = true")
	}
}

func TestTestProbeFallsBackToFirstProfileWhenActiveOneIsDisabled(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	fx := &testdevice.Fixture{
		Profiles: []testdevice.ProfileFixture{
			{Name: "one"},
			{Name: "two", Active: true, Disabled: true},
		},
	}

	if err := d.TestProbe(dev, fx); err != nil {
		t.Fatalf("TestProbe: %v", err)
	}
	if !dev.Profiles[0].Active {
		t.Fatalf("profile 0 not forced Active when the requested active profile is disabled")
	}
	if dev.Profiles[1].Active {
		t.Fatalf("disabled profile 1 ended up Active")
	}
}

func TestTestProbePopulatesResolutionsButtonsAndLEDs(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	fx := &testdevice.Fixture{
		Profiles: []testdevice.ProfileFixture{
			{
				Active: true,
				Resolutions: []testdevice.ResolutionFixture{
					{XRes: 800, YRes: 800, Active: true, Default: true},
					{DPIMin: 400, DPIMax: 1600},
				},
				Buttons: []testdevice.ButtonFixture{
					{ActionType: "key", Key: 30},
					{ActionType: "macro", Macro: []testdevice.MacroEventFixture{
						{Type: "press", Key: 30},
						{Type: "release", Key: 30},
					}},
				},
				LEDs: []testdevice.LEDFixture{
					{Mode: "cycle", R: 1, G: 2, B: 3},
				},
			},
		},
	}

	if err := d.TestProbe(dev, fx); err != nil {
		t.Fatalf("TestProbe: %v", err)
	}
	p := dev.Profiles[0]
	if len(p.Resolutions) != 2 {
		t.Fatalf("len(Resolutions) = %d, want 2", len(p.Resolutions))
	}
	if p.Resolutions[0].DPIX != 800 || p.Resolutions[0].DPIY != 800 {
		t.Fatalf("Resolutions[0] DPI = %d/%d, want 800/800", p.Resolutions[0].DPIX, p.Resolutions[0].DPIY)
	}
	if p.Resolutions[1].Active {
		t.Fatalf("Resolutions[1] should not be Active: resolution 0 already claimed the fixture's Active flag")
	}
	if !p.Resolutions[0].Active || !p.Resolutions[0].Default {
		t.Fatalf("Resolutions[0] Active/Default = %v/%v, want true/true", p.Resolutions[0].Active, p.Resolutions[0].Default)
	}
	if len(p.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(p.Buttons))
	}
	if p.Buttons[0].Action.Kind != model.ActionKey || p.Buttons[0].Action.Key != 30 {
		t.Fatalf("Buttons[0].Action = %+v, want a key action for key 30", p.Buttons[0].Action)
	}
	if len(p.Buttons[1].Macro.Events) != 2 {
		t.Fatalf("Buttons[1] macro has %d events, want 2", len(p.Buttons[1].Macro.Events))
	}
	if len(p.LEDs) != 1 || p.LEDs[0].Mode != model.LEDModeCycle {
		t.Fatalf("LEDs = %+v, want one cycle-mode LED", p.LEDs)
	}
	if p.LEDs[0].Color != (model.RGB{R: 1, G: 2, B: 3}) {
		t.Fatalf("LEDs[0].Color = %+v, want {1 2 3}", p.LEDs[0].Color)
	}
}

func TestCommitHonorsFailNextCommitToggleThenClearsIt(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	_ = d.TestProbe(dev, &testdevice.Fixture{})

	SetFailNextCommit(dev, true)
	if err := d.Commit(dev); err == nil {
		t.Fatalf("Commit() succeeded, want the armed synthetic failure")
	}
	if err := d.Commit(dev); err != nil {
		t.Fatalf("Commit() after the armed failure fired: %v, want nil (toggle should self-clear)", err)
	}
}

func TestRefreshActiveResolutionReportsChangeOnNthPoll(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	_ = d.TestProbe(dev, &testdevice.Fixture{})

	SetResolutionPollChange(dev, 3)
	for i := 1; i <= 3; i++ {
		changed, err := d.RefreshActiveResolution(dev)
		if err != nil {
			t.Fatalf("RefreshActiveResolution poll %d: %v", i, err)
		}
		wantChanged := i == 3
		if (changed == 1) != wantChanged {
			t.Fatalf("poll %d: changed = %d, want changed=%v", i, changed, wantChanged)
		}
	}
}

func TestParseDeviceType(t *testing.T) {
	cases := map[string]model.DeviceType{
		"mouse":    model.DeviceTypeMouse,
		"keyboard": model.DeviceTypeKeyboard,
		"other":    model.DeviceTypeOther,
		"":         model.DeviceTypeUnspecified,
		"bogus":    model.DeviceTypeUnspecified,
	}
	for in, want := range cases {
		if got := parseDeviceType(in); got != want {
			t.Fatalf("parseDeviceType(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRemoveClearsDriverData(t *testing.T) {
	d := newTestDriver()
	dev := model.NewDevice("hidraw-test-0")
	_ = d.TestProbe(dev, &testdevice.Fixture{})
	if dev.DriverData == nil {
		t.Fatalf("precondition: DriverData should be set after TestProbe")
	}
	d.Remove(dev)
	if dev.DriverData != nil {
		t.Fatalf("DriverData = %v after Remove, want nil", dev.DriverData)
	}
}
