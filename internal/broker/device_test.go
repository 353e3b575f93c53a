package broker

import (
	"testing"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

func TestDeviceObjectCommitDelegatesToInstalledFunc(t *testing.T) {
	_, dev, obj := testDeviceWithProfiles(t, 1)

	var gotDev *model.Device
	obj.b.commit = func(d *model.Device) errs.Code {
		gotDev = d
		return errs.CodeOK
	}

	status, dErr := obj.Commit()
	if dErr != nil {
		t.Fatalf("Commit returned a dbus error: %v", dErr)
	}
	if status != uint32(errs.CodeOK) {
		t.Fatalf("status = %d, want CodeOK", status)
	}
	if gotDev != dev {
		t.Fatalf("commit func invoked with the wrong device")
	}
}

func TestDeviceObjectCommitFailsClosedWithoutAnInstalledFunc(t *testing.T) {
	_, _, obj := testDeviceWithProfiles(t, 1)
	obj.b.commit = nil

	status, dErr := obj.Commit()
	if dErr == nil {
		t.Fatalf("Commit succeeded with no commit func installed")
	}
	if status != uint32(errs.CodeSystem) {
		t.Fatalf("status = %d, want CodeSystem", status)
	}
}

func TestDeviceObjectRefreshAllWalksProfiles(t *testing.T) {
	_, dev, obj := testDeviceWithProfiles(t, 2)
	dev.Profiles[0].Dirty = true
	dev.Profiles[1].Dirty = true

	// refreshAll should not panic even though no real bus connection is
	// attached (props is nil on every child, refresh() no-ops on that).
	obj.refreshAll()
}
