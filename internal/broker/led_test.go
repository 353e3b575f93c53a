package broker

import (
	"testing"

	"github.com/godbus/dbus/v5/prop"

	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

func testLED(t *testing.T) (*model.Profile, *model.LED) {
	t.Helper()
	dev := model.NewDevice("hidraw0")
	dev.InitProfiles(1)
	p := dev.Profiles[0]
	p.InitLEDs(1)
	p.LEDs[0].SupportedModes = model.LEDCapOff | model.LEDCapOn | model.LEDCapCycle | model.LEDCapBreathing
	return p, p.LEDs[0]
}

func TestLedObjectSetColor(t *testing.T) {
	p, led := testLED(t)
	o := newLedObject(nil, p, led, 0)

	if dErr := o.SetColor(10, 20, 30); dErr != nil {
		t.Fatalf("SetColor returned an error: %v", dErr)
	}
	if led.Color != (model.RGB{R: 10, G: 20, B: 30}) {
		t.Fatalf("Color = %+v, want {10 20 30}", led.Color)
	}
}

func TestLedObjectOnSetModeRejectsUnsupportedMode(t *testing.T) {
	p, led := testLED(t)
	led.SupportedModes = model.LEDCapOff
	o := newLedObject(nil, p, led, 0)

	dErr := o.onSetMode(&prop.Change{Value: uint32(model.LEDModeCycle)})
	if dErr == nil {
		t.Fatalf("onSetMode succeeded for an unsupported mode")
	}
}

func TestLedObjectOnSetModeAcceptsSupportedMode(t *testing.T) {
	p, led := testLED(t)
	o := newLedObject(nil, p, led, 0)

	dErr := o.onSetMode(&prop.Change{Value: uint32(model.LEDModeBreathing)})
	if dErr != nil {
		t.Fatalf("onSetMode: %v", dErr)
	}
	if led.Mode != model.LEDModeBreathing {
		t.Fatalf("Mode = %v, want LEDModeBreathing", led.Mode)
	}
}

func TestLedObjectOnSetModeRejectsWrongWireType(t *testing.T) {
	p, led := testLED(t)
	o := newLedObject(nil, p, led, 0)

	if dErr := o.onSetMode(&prop.Change{Value: "not a uint32"}); dErr == nil {
		t.Fatalf("onSetMode succeeded with a mistyped property value")
	}
}

func TestLedObjectOnSetBrightnessAndEffectDuration(t *testing.T) {
	p, led := testLED(t)
	o := newLedObject(nil, p, led, 0)

	if dErr := o.onSetBrightness(&prop.Change{Value: byte(200)}); dErr != nil {
		t.Fatalf("onSetBrightness: %v", dErr)
	}
	if led.Brightness != 200 {
		t.Fatalf("Brightness = %d, want 200", led.Brightness)
	}

	if dErr := o.onSetEffectDuration(&prop.Change{Value: uint32(750)}); dErr != nil {
		t.Fatalf("onSetEffectDuration: %v", dErr)
	}
	if led.EffectDuration != 750 {
		t.Fatalf("EffectDuration = %d, want 750", led.EffectDuration)
	}
}
