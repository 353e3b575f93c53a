package model

import (
	"bytes"
	"unicode/utf8"
)

// ProfileCapability is a bit in Profile.Capabilities.
type ProfileCapability uint32

const (
	ProfileCapSetDefault ProfileCapability = 1 << iota
	ProfileCapDisable
	ProfileCapWriteOnly
)

// ProfileMaxCount bounds Device.Profiles (spec'd at 16).
const ProfileMaxCount = 16

// ProfileMaxRateEntries bounds SupportedRates and DebounceList (spec'd at 8).
const ProfileMaxRateEntries = 8

// ProfileMaxResolutions bounds Profile.Resolutions (spec'd at 16).
const ProfileMaxResolutions = 16

// ReportRateMin and ReportRateMax bound the Hz value SetReportRate
// accepts. Callers (the broker layer) clamp client-supplied values into
// this range before calling SetReportRate.
const (
	ReportRateMin = 125
	ReportRateMax = 8000
)

// Profile is one configuration slot on a Device.
type Profile struct {
	Index   int
	Name    string
	Enabled bool
	Active  bool

	// HasName reports whether this profile has a non-null name slot.
	// Drivers that never populate a name during Probe leave it false,
	// and the bus rejects a Name write with a capability error; once a
	// driver calls SetName/SetNameRaw (even with an empty string) the
	// slot exists and stays writable for the life of the profile.
	HasName bool

	Dirty              bool
	RateDirty          bool
	AngleSnappingDirty bool
	DebounceDirty      bool
	IsActiveDirty      bool

	Capabilities ProfileCapability

	ReportRate     uint32
	SupportedRates []uint32 // strictly ascending, <=8 entries

	Debounce     int32 // -1 means unset
	DebounceList []int32

	AngleSnapping int32 // -1 means unset

	Resolutions []*Resolution
	Buttons     []*Button
	LEDs        []*LED

	Device *Device
}

func newProfile(device *Device, index int) *Profile {
	return &Profile{
		Index:         index,
		Enabled:       true,
		Debounce:      -1,
		AngleSnapping: -1,
		Device:        device,
	}
}

// HasCapability reports whether cap is set on this profile.
func (p *Profile) HasCapability(cap ProfileCapability) bool {
	return p.Capabilities&cap != 0
}

// InitResolutions allocates n Resolution children, replacing any
// existing ones. Called only from driver Probe.
func (p *Profile) InitResolutions(n int) {
	p.Resolutions = make([]*Resolution, n)
	for i := range p.Resolutions {
		p.Resolutions[i] = newResolution(p, i)
	}
}

// InitButtons allocates n Button children, replacing any existing ones.
func (p *Profile) InitButtons(n int) {
	p.Buttons = make([]*Button, n)
	for i := range p.Buttons {
		p.Buttons[i] = newButton(p, i)
	}
}

// InitLEDs allocates n LED children, replacing any existing ones.
func (p *Profile) InitLEDs(n int) {
	p.LEDs = make([]*LED, n)
	for i := range p.LEDs {
		p.LEDs[i] = newLED(p, i)
	}
}

// SetName sets the profile's display name. Non-UTF-8 input is recoded:
// first as if it were ISO-8859-1 (every byte maps 1:1 onto a Unicode
// code point, since Latin-1 and the first 256 Unicode code points
// coincide), then, if that still doesn't validate (it always will, but
// kept as an explicit fallback for defense in depth), dropped to an
// ASCII-only approximation.
func (p *Profile) SetName(name string) {
	if !utf8.ValidString(name) {
		name = recodeLatin1(name)
		if !utf8.ValidString(name) {
			name = asciiOnly(name)
		}
	}
	p.HasName = true
	if p.Name == name {
		return
	}
	p.Name = name
	p.Dirty = true
}

// SetNameRaw sets the profile name from a raw byte slice of unknown
// encoding, applying the same recode rules as SetName.
func (p *Profile) SetNameRaw(raw []byte) {
	p.SetName(string(raw))
}

func recodeLatin1(s string) string {
	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		buf.WriteRune(rune(s[i]))
	}
	return buf.String()
}

func asciiOnly(s string) string {
	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x20 && b < 0x7f {
			buf.WriteByte(b)
		} else {
			buf.WriteByte('?')
		}
	}
	return buf.String()
}

// SetEnabled disables or enables the profile. Disabling requires
// ProfileCapDisable and is a value error while the profile is Active;
// Device.SetActiveProfile in turn refuses to activate a disabled
// profile.
func (p *Profile) SetEnabled(enabled bool) error {
	if !enabled {
		if !p.HasCapability(ProfileCapDisable) {
			return errCapability("profile %d does not support disabling", p.Index)
		}
		if p.Active {
			return errValue("profile %d: cannot disable the active profile", p.Index)
		}
	}
	if p.Enabled == enabled {
		return nil
	}
	p.Enabled = enabled
	p.Dirty = true
	return nil
}

// SetReportRate sets the profile's report rate in Hz. The caller (broker
// layer) is responsible for clamping to [ReportRateMin, ReportRateMax]
// before calling this; SetReportRate itself only records the dirty
// transition on an actual change.
func (p *Profile) SetReportRate(hz uint32) {
	if p.ReportRate == hz {
		return
	}
	p.ReportRate = hz
	p.Dirty = true
	p.RateDirty = true
}

// SetAngleSnapping sets the profile's angle-snapping value (-1 unset).
func (p *Profile) SetAngleSnapping(v int32) {
	if p.AngleSnapping == v {
		return
	}
	p.AngleSnapping = v
	p.Dirty = true
	p.AngleSnappingDirty = true
}

// SetDebounce sets the profile's debounce value in milliseconds (-1 unset).
func (p *Profile) SetDebounce(v int32) {
	if p.Debounce == v {
		return
	}
	p.Debounce = v
	p.Dirty = true
	p.DebounceDirty = true
}

// clearDirty clears this profile's dirty flags (not its children's;
// Device.ClearAllDirty walks the whole subtree).
func (p *Profile) clearDirty() {
	p.Dirty = false
	p.RateDirty = false
	p.AngleSnappingDirty = false
	p.DebounceDirty = false
	p.IsActiveDirty = false
}
