package testdevice_test

import (
	"os"
	"testing"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/drivers/testdriver"
	"github.com/ghostcat-linux/ghostcatd/internal/testdevice"
)

func newLoader() *testdevice.Loader {
	return testdevice.NewLoader(testdriver.New(hclog.NewNullLogger()))
}

func TestLoaderLoadValidFixture(t *testing.T) {
	l := newLoader()
	doc := `{"name":"Widget","device_type":"mouse","profiles":[{"active":true,"resolutions":[{"xres":800,"yres":800,"active":true,"default":true}]}]}`

	dev, err := l.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dev.Name != "Widget" {
		t.Fatalf("Name = %q, want Widget", dev.Name)
	}
	if dev.DriverID != "test" {
		t.Fatalf("DriverID = %q, want test", dev.DriverID)
	}
	if l.Previous() != dev {
		t.Fatalf("Previous() does not return the just-loaded device")
	}
}

func TestLoaderLoadRejectsMalformedJSONOutsideDebugMode(t *testing.T) {
	os.Unsetenv(testdevice.EnvDebug)
	l := newLoader()
	if _, err := l.Load([]byte("{not json")); err == nil {
		t.Fatalf("Load() succeeded on malformed JSON outside debug mode")
	}
}

func TestLoaderLoadToleratesMalformedJSONInDebugMode(t *testing.T) {
	os.Setenv(testdevice.EnvDebug, "1")
	defer os.Unsetenv(testdevice.EnvDebug)
	l := newLoader()

	dev, err := l.Load([]byte("{not json"))
	if err != nil {
		t.Fatalf("Load() failed in debug mode: %v", err)
	}
	if dev == nil {
		t.Fatalf("Load() returned a nil device in debug mode")
	}
}

func TestLoaderLoadTracksOnlyTheLatestDevice(t *testing.T) {
	l := newLoader()
	first, err := l.Load([]byte(`{"name":"first"}`))
	if err != nil {
		t.Fatalf("Load(first): %v", err)
	}
	second, err := l.Load([]byte(`{"name":"second"}`))
	if err != nil {
		t.Fatalf("Load(second): %v", err)
	}
	if first == second {
		t.Fatalf("two Load calls returned the same device")
	}
	if l.Previous() != second {
		t.Fatalf("Previous() = %v, want the most recently loaded device", l.Previous())
	}
}

func TestEnabledAndDebugModeReadEnvironment(t *testing.T) {
	os.Unsetenv(testdevice.EnvEnable)
	if testdevice.Enabled() {
		t.Fatalf("Enabled() = true with %s unset", testdevice.EnvEnable)
	}
	os.Setenv(testdevice.EnvEnable, "1")
	defer os.Unsetenv(testdevice.EnvEnable)
	if !testdevice.Enabled() {
		t.Fatalf("Enabled() = false with %s set", testdevice.EnvEnable)
	}
}
