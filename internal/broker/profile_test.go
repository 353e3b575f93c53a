package broker

import (
	"testing"

	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

func testDeviceWithProfiles(t *testing.T, n int) (*Broker, *model.Device, *deviceObject) {
	t.Helper()
	dev := model.NewDevice("hidraw0")
	dev.InitProfiles(n)
	for i, p := range dev.Profiles {
		p.SupportedRates = []uint32{1000}
		if i == 0 {
			p.Active = true
		}
	}

	obj, err := newDeviceObject(nil, dev)
	if err != nil {
		t.Fatalf("newDeviceObject: %v", err)
	}
	// obj.b must point back at the broker that owns it, matching what
	// LinkDevice wires up for real; newDeviceObject alone leaves it nil.
	b := &Broker{devices: map[string]*deviceObject{dev.Sysname: obj}}
	rewireBroker(obj, b)
	return b, dev, obj
}

// rewireBroker patches the broker backreference through a freshly built
// deviceObject's subtree, since newDeviceObject was called before b
// existed (Broker.devices needs an entry to build the cycle).
func rewireBroker(obj *deviceObject, b *Broker) {
	obj.b = b
	for _, p := range obj.profiles {
		p.b = b
		for _, r := range p.resolutions {
			r.b = b
		}
		for _, btn := range p.buttons {
			btn.b = b
		}
		for _, l := range p.leds {
			l.b = b
		}
	}
}

func TestProfileObjectSetActiveRefreshesSiblings(t *testing.T) {
	_, dev, obj := testDeviceWithProfiles(t, 3)

	status, dErr := obj.profiles[2].SetActive()
	if dErr != nil {
		t.Fatalf("SetActive returned a dbus error: %v", dErr)
	}
	if status != 0 {
		t.Fatalf("status = %d, want 0 (OK)", status)
	}
	if !dev.Profiles[2].Active {
		t.Fatalf("profile 2 not Active after SetActive")
	}
	if dev.Profiles[0].Active {
		t.Fatalf("profile 0 still Active after profile 2's SetActive")
	}
}

func TestProfileObjectOnSetNameAndDisabled(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	p := obj.profiles[0]
	p.p.Capabilities |= model.ProfileCapDisable
	p.p.HasName = true

	if dErr := p.onSetName(&prop.Change{Value: "Gaming"}); dErr != nil {
		t.Fatalf("onSetName: %v", dErr)
	}
	if p.p.Name != "Gaming" {
		t.Fatalf("Name = %q, want Gaming", p.p.Name)
	}

	// The single active profile can't be disabled.
	if dErr := p.onSetDisabled(&prop.Change{Value: true}); dErr == nil {
		t.Fatalf("onSetDisabled(true) succeeded on the active profile")
	}
}

func TestProfileObjectOnSetNameRejectsWithoutNameSlot(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	p := obj.profiles[0]
	if p.p.HasName {
		t.Fatalf("precondition failed: HasName true on a fresh profile")
	}

	if dErr := p.onSetName(&prop.Change{Value: "Gaming"}); dErr == nil {
		t.Fatalf("onSetName succeeded on a profile with no name slot (HasName=false)")
	}
	if p.p.Name != "" {
		t.Fatalf("Name = %q, want unchanged empty string", p.p.Name)
	}
}

func TestProfileObjectOnSetReportRateAngleSnappingDebounce(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	p := obj.profiles[0]

	if dErr := p.onSetReportRate(&prop.Change{Value: uint32(500)}); dErr != nil {
		t.Fatalf("onSetReportRate: %v", dErr)
	}
	if p.p.ReportRate != 500 {
		t.Fatalf("ReportRate = %d, want 500", p.p.ReportRate)
	}

	if dErr := p.onSetAngleSnapping(&prop.Change{Value: int32(5)}); dErr != nil {
		t.Fatalf("onSetAngleSnapping: %v", dErr)
	}
	if p.p.AngleSnapping != 5 {
		t.Fatalf("AngleSnapping = %d, want 5", p.p.AngleSnapping)
	}

	if dErr := p.onSetDebounce(&prop.Change{Value: int32(8)}); dErr != nil {
		t.Fatalf("onSetDebounce: %v", dErr)
	}
	if p.p.Debounce != 8 {
		t.Fatalf("Debounce = %d, want 8", p.p.Debounce)
	}
}

func TestProfileObjectOnSetNameRejectsWrongWireType(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	p := obj.profiles[0]
	p.p.HasName = true
	if dErr := p.onSetName(&prop.Change{Value: 42}); dErr == nil {
		t.Fatalf("onSetName succeeded with a non-string value")
	}
}

func TestProfileObjectOnSetReportRateClampsToSupportedRange(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	p := obj.profiles[0]

	if dErr := p.onSetReportRate(&prop.Change{Value: uint32(50)}); dErr != nil {
		t.Fatalf("onSetReportRate(50): %v", dErr)
	}
	if p.p.ReportRate != model.ReportRateMin {
		t.Fatalf("ReportRate = %d, want clamped to %d", p.p.ReportRate, model.ReportRateMin)
	}

	if dErr := p.onSetReportRate(&prop.Change{Value: uint32(20000)}); dErr != nil {
		t.Fatalf("onSetReportRate(20000): %v", dErr)
	}
	if p.p.ReportRate != model.ReportRateMax {
		t.Fatalf("ReportRate = %d, want clamped to %d", p.p.ReportRate, model.ReportRateMax)
	}
}
