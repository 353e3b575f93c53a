package testdevice

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	uuid "github.com/hashicorp/go-uuid"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// EnvEnable gates whether LoadTestDevice is reachable at all (developer
// builds / sessions only).
const EnvEnable = "GHOSTCATD_TEST_DEVICE"

// EnvDebug additionally relaxes fixture validation, mirroring the
// original's conditional compilation of the test-device bus method
// behind a debug flag.
const EnvDebug = "GHOSTCATD_DEBUG"

// Enabled reports whether the test-device path should be registered on
// the bus at all.
func Enabled() bool {
	return os.Getenv(EnvEnable) != ""
}

// DebugMode reports whether fixture validation should be relaxed.
func DebugMode() bool {
	return os.Getenv(EnvDebug) != ""
}

// Loader parses JSON fixtures into synthetic Devices and tracks the
// single "current test device" slot: loading a new fixture discards the
// previous device's slot reference, it does not expose a remove
// operation (decided: replace-only).
type Loader struct {
	mu     sync.Mutex
	driver driver.Driver
	prev   *model.Device
}

// NewLoader returns a Loader that probes fixtures through the given test
// driver implementation.
func NewLoader(d driver.Driver) *Loader {
	return &Loader{driver: d}
}

// Load parses raw as a Fixture, builds a Device from it via the test
// driver's TestProbe, and runs the sanity check. It does not link or
// unlink anything on the directory/broker: the caller (the Manager's bus
// method handler) is responsible for unlinking the previous slot
// (available via Previous) and linking the returned device.
func (l *Loader) Load(raw []byte) (*model.Device, error) {
	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		if !DebugMode() {
			return nil, fmt.Errorf("parsing fixture: %w", err)
		}
		// Debug mode tolerates malformed input by falling back to an
		// empty fixture rather than rejecting the LoadTestDevice call.
		fx = Fixture{}
	}

	sysname, err := syntheticSysname()
	if err != nil {
		return nil, fmt.Errorf("generating synthetic sysname: %w", err)
	}

	dev := model.NewDevice(sysname)
	if err := l.driver.TestProbe(dev, &fx); err != nil {
		return nil, fmt.Errorf("test-probing fixture: %w", err)
	}
	dev.DriverID = "test"
	if err := dev.SanityCheck(); err != nil {
		return nil, fmt.Errorf("fixture failed sanity check: %w", err)
	}

	l.mu.Lock()
	l.prev = dev
	l.mu.Unlock()
	return dev, nil
}

// Previous returns the device tracked from the last successful Load, or
// nil before the first call.
func (l *Loader) Previous() *model.Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prev
}

func syntheticSysname() (string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	return "hidraw-test-" + id[:8], nil
}
