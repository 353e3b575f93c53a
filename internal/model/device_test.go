package model

import "testing"

func validDevice(numProfiles int) *Device {
	d := NewDevice("hidraw0")
	d.InitProfiles(numProfiles)
	for i, p := range d.Profiles {
		p.SupportedRates = []uint32{125, 250, 500, 1000}
		p.InitResolutions(1)
		p.Resolutions[0].DPIList = []uint32{400, 800}
		p.Resolutions[0].Active = true
		p.Resolutions[0].Default = true
		if i == 0 {
			p.Active = true
		}
	}
	return d
}

func TestDeviceSanityCheckPassesOnWellFormedProbe(t *testing.T) {
	d := validDevice(2)
	if err := d.SanityCheck(); err != nil {
		t.Fatalf("SanityCheck: %v", err)
	}
}

func TestDeviceSanityCheckRejectsNoActiveProfile(t *testing.T) {
	d := validDevice(2)
	d.Profiles[0].Active = false
	if err := d.SanityCheck(); err == nil {
		t.Fatalf("SanityCheck succeeded with zero active profiles")
	}
}

func TestDeviceSanityCheckRejectsTwoActiveProfiles(t *testing.T) {
	d := validDevice(2)
	d.Profiles[1].Active = true
	if err := d.SanityCheck(); err == nil {
		t.Fatalf("SanityCheck succeeded with two active profiles")
	}
}

func TestDeviceSanityCheckRejectsEmptyDPIList(t *testing.T) {
	d := validDevice(1)
	d.Profiles[0].Resolutions[0].DPIList = nil
	if err := d.SanityCheck(); err == nil {
		t.Fatalf("SanityCheck succeeded with an empty dpi list")
	}
}

func TestDeviceSanityCheckRejectsDirtyProfile(t *testing.T) {
	d := validDevice(1)
	d.Profiles[0].Dirty = true
	if err := d.SanityCheck(); err == nil {
		t.Fatalf("SanityCheck succeeded with a dirty profile")
	}
}

func TestSetActiveProfileSingleProfileFastPathStillDirties(t *testing.T) {
	d := validDevice(1)
	d.ClearAllDirty()
	if d.Profiles[0].Dirty {
		t.Fatalf("precondition failed: profile already dirty")
	}

	if err := d.SetActiveProfile(0); err != nil {
		t.Fatalf("SetActiveProfile(0): %v", err)
	}
	if !d.Profiles[0].IsActiveDirty {
		t.Fatalf("IsActiveDirty = false on a single-profile device, want true")
	}
}

func TestSetActiveProfileMutualExclusivity(t *testing.T) {
	d := validDevice(3)
	if err := d.SetActiveProfile(2); err != nil {
		t.Fatalf("SetActiveProfile(2): %v", err)
	}
	for i, p := range d.Profiles {
		want := i == 2
		if p.Active != want {
			t.Fatalf("profile %d Active = %v, want %v", i, p.Active, want)
		}
	}
}

func TestSetActiveProfileRejectsDisabled(t *testing.T) {
	d := validDevice(2)
	d.Profiles[1].Capabilities |= ProfileCapDisable
	if err := d.Profiles[1].SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false): %v", err)
	}
	if err := d.SetActiveProfile(1); err == nil {
		t.Fatalf("SetActiveProfile succeeded on a disabled profile")
	}
}

func TestClearAllDirtyWalksEntireSubtree(t *testing.T) {
	d := validDevice(1)
	p := d.Profiles[0]
	p.InitButtons(1)
	p.InitLEDs(1)
	p.Dirty = true
	p.Resolutions[0].Dirty = true
	p.Buttons[0].Dirty = true
	p.LEDs[0].Dirty = true

	d.ClearAllDirty()

	if p.Dirty || p.Resolutions[0].Dirty || p.Buttons[0].Dirty || p.LEDs[0].Dirty {
		t.Fatalf("ClearAllDirty left a dirty flag set somewhere in the subtree")
	}
}

func TestDeviceRefUnref(t *testing.T) {
	d := NewDevice("hidraw0")
	if d.RefCount() != 1 {
		t.Fatalf("initial RefCount() = %d, want 1", d.RefCount())
	}
	d.Ref()
	if d.RefCount() != 2 {
		t.Fatalf("RefCount() after Ref() = %d, want 2", d.RefCount())
	}
	if n := d.Unref(); n != 1 {
		t.Fatalf("Unref() returned %d, want 1", n)
	}
}

func TestDeviceLinkUnlink(t *testing.T) {
	d := NewDevice("hidraw0")
	if d.Linked() {
		t.Fatalf("Linked() = true before Link()")
	}
	d.Link()
	if !d.Linked() {
		t.Fatalf("Linked() = false after Link()")
	}
	d.Unlink()
	if d.Linked() {
		t.Fatalf("Linked() = true after Unlink()")
	}
}
