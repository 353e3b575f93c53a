package scheduler

import (
	"errors"
	"testing"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
	"github.com/ghostcat-linux/ghostcatd/internal/reactor"
)

// syncDefer runs every deferred task immediately, inline, so scheduler
// tests don't need a real reactor goroutine.
type syncDefer struct{}

func (syncDefer) Defer(task reactor.Task) { task() }

type fakeDriver struct {
	commitErr     error
	commitCalls   int
	setActiveErr  error
	setActiveCalls int
}

func (f *fakeDriver) Probe(dev *model.Device, id driver.Identity) error { return nil }
func (f *fakeDriver) Commit(dev *model.Device) error {
	f.commitCalls++
	return f.commitErr
}
func (f *fakeDriver) Remove(dev *model.Device) {}
func (f *fakeDriver) SetActiveProfile(dev *model.Device, index int) error {
	f.setActiveCalls++
	return f.setActiveErr
}
func (f *fakeDriver) RefreshActiveResolution(dev *model.Device) (int, error) {
	return 0, driver.ErrUnsupported
}
func (f *fakeDriver) TestProbe(dev *model.Device, fixture driver.Fixture) error {
	return driver.ErrUnsupported
}

func deviceWithDriver(t *testing.T, reg *driver.Registry, id string, drv driver.Driver) *model.Device {
	t.Helper()
	reg.Register(driver.Registration{ID: id, Driver: drv})
	dev := model.NewDevice("hidraw0")
	dev.DriverID = id
	dev.InitProfiles(1)
	dev.Profiles[0].Active = true
	return dev
}

func TestCommitReturnsOKImmediatelyAndClearsDirtyOnSuccess(t *testing.T) {
	reg := driver.NewRegistry(hclog.NewNullLogger())
	drv := &fakeDriver{}
	dev := deviceWithDriver(t, reg, "fake", drv)
	dev.Profiles[0].Dirty = true

	s := New(hclog.NewNullLogger(), syncDefer{}, reg, nil)
	code := s.Commit(dev)

	if code != errs.CodeOK {
		t.Fatalf("Commit() = %v, want CodeOK", code)
	}
	if drv.commitCalls != 1 {
		t.Fatalf("driver.Commit called %d times, want 1", drv.commitCalls)
	}
	if dev.Profiles[0].Dirty {
		t.Fatalf("profile still dirty after a successful commit")
	}
	if dev.RefCount() != 1 {
		t.Fatalf("RefCount() = %d after commit, want 1 (ref taken and released)", dev.RefCount())
	}
}

func TestCommitCallsSetActiveProfileWhenActiveDirtySurvivesCommit(t *testing.T) {
	reg := driver.NewRegistry(hclog.NewNullLogger())
	drv := &fakeDriver{}
	dev := deviceWithDriver(t, reg, "fake", drv)
	dev.Profiles[0].IsActiveDirty = true

	s := New(hclog.NewNullLogger(), syncDefer{}, reg, nil)
	s.Commit(dev)

	if drv.setActiveCalls != 1 {
		t.Fatalf("driver.SetActiveProfile called %d times, want 1", drv.setActiveCalls)
	}
}

func TestCommitSkipsSetActiveProfileWhenCommitFails(t *testing.T) {
	reg := driver.NewRegistry(hclog.NewNullLogger())
	drv := &fakeDriver{commitErr: errors.New("boom")}
	dev := deviceWithDriver(t, reg, "fake", drv)
	dev.Profiles[0].IsActiveDirty = true

	s := New(hclog.NewNullLogger(), syncDefer{}, reg, nil)
	s.Commit(dev)

	if drv.setActiveCalls != 0 {
		t.Fatalf("driver.SetActiveProfile called on a failed commit, want 0 calls")
	}
	if dev.Profiles[0].Dirty {
		t.Fatalf("dirty flags should still be cleared even when commit fails")
	}
}

func TestCommitOnUnknownDriverIDClearsDirtyAndStillReturnsOK(t *testing.T) {
	reg := driver.NewRegistry(hclog.NewNullLogger())
	dev := model.NewDevice("hidraw0")
	dev.DriverID = "missing"
	dev.InitProfiles(1)
	dev.Profiles[0].Active = true
	dev.Profiles[0].Dirty = true

	s := New(hclog.NewNullLogger(), syncDefer{}, reg, nil)
	code := s.Commit(dev)

	if code != errs.CodeOK {
		t.Fatalf("Commit() return = %v, want CodeOK (fire-and-forget acceptance)", code)
	}
	if dev.Profiles[0].Dirty {
		t.Fatalf("dirty flags not cleared when the driver id is unknown")
	}
}
