// Package testdevice implements the test-device path: parsing a JSON
// fixture describing a synthetic device and replacing the single
// tracked test-device slot with it.
package testdevice

// Fixture is the root of the JSON document accepted by LoadTestDevice.
// Unknown keys are ignored (no versioning).
type Fixture struct {
	Name       string            `json:"name"`
	DeviceType string            `json:"device_type"`
	Profiles   []ProfileFixture  `json:"profiles"`
}

// ProfileFixture describes one profile slot.
type ProfileFixture struct {
	Name        string               `json:"name"`
	Active      bool                 `json:"active"`
	Disabled    bool                 `json:"disabled"`
	Hz          uint32               `json:"hz"`
	ReportRates []uint32             `json:"report_rates"`
	Resolutions []ResolutionFixture  `json:"resolutions"`
	Buttons     []ButtonFixture      `json:"buttons"`
	LEDs        []LEDFixture         `json:"leds"`
}

// ResolutionFixture describes one resolution preset; XRes/YRes set the
// initially active DPI, DPIMin/DPIMax drive GenerateDPIList, and Default
// marks the resolution restored to on a factory reset.
type ResolutionFixture struct {
	XRes    uint32 `json:"xres"`
	YRes    uint32 `json:"yres"`
	DPIMin  uint32 `json:"dpi_min"`
	DPIMax  uint32 `json:"dpi_max"`
	Active  bool   `json:"active"`
	Default bool   `json:"default"`
}

// ButtonFixture describes one button's bound action. Exactly one of
// Button/Key/Special/Macro should be populated, selected by ActionType.
type ButtonFixture struct {
	ActionType string        `json:"action_type"`
	Button     uint32        `json:"button"`
	Key        uint32        `json:"key"`
	Special    uint32        `json:"special"`
	Macro      []MacroEventFixture `json:"macro"`
}

// MacroEventFixture describes one macro step.
type MacroEventFixture struct {
	Type   string `json:"type"` // "press", "release", "wait"
	Key    uint32 `json:"key"`
	WaitMS uint32 `json:"wait_ms"`
}

// LEDFixture describes one LED's initial parameters.
type LEDFixture struct {
	Mode           string `json:"mode"`
	R              uint8  `json:"r"`
	G              uint8  `json:"g"`
	B              uint8  `json:"b"`
	Brightness     uint8  `json:"brightness"`
	EffectDuration uint32 `json:"effect_duration"`
}
