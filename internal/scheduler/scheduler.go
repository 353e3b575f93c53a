// Package scheduler implements the commit scheduler: each
// Device.Commit bus call becomes exactly one deferred task on the
// reactor's single goroutine, run FIFO with no coalescing, so two
// back-to-back commits on the same device always run as two separate
// driver.Commit calls in the order they were requested.
package scheduler

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/broker"
	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/errs"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
	"github.com/ghostcat-linux/ghostcatd/internal/reactor"
)

// Defer is the subset of *reactor.Reactor the scheduler needs, narrowed
// to ease testing with a synchronous fake.
type Defer interface {
	Defer(task reactor.Task)
}

// Scheduler wires Device.Commit bus calls to the driver registry and the
// reactor's deferred-task queue.
type Scheduler struct {
	log      hclog.Logger
	reactor  Defer
	registry *driver.Registry
	brk      *broker.Broker
}

// New returns a Scheduler that runs commits on reactor via the given
// driver registry, notifying brk of the outcome.
func New(log hclog.Logger, reactor Defer, registry *driver.Registry, brk *broker.Broker) *Scheduler {
	return &Scheduler{
		log:      log.Named("scheduler"),
		reactor:  reactor,
		registry: registry,
		brk:      brk,
	}
}

// Commit implements broker.CommitFunc. It takes a reference on dev so a
// concurrent hotplug removal can't free driver state out from under the
// deferred task, enqueues the actual work on the reactor goroutine, and
// returns immediately with CodeOK ("accepted"): the real outcome never
// reaches the Commit() caller as a return value, it surfaces later as a
// Resync signal (on failure) or simply as the cleared dirty properties
// (on success).
func (s *Scheduler) Commit(dev *model.Device) errs.Code {
	dev.Ref()
	s.reactor.Defer(func() {
		s.runCommit(dev)
		dev.Unref()
	})
	return errs.CodeOK
}

func (s *Scheduler) runCommit(dev *model.Device) errs.Code {
	reg, ok := s.registry.Lookup(dev.DriverID)
	if !ok {
		s.log.Error("commit requested for device with unknown driver id", "sysname", dev.Sysname, "driver", dev.DriverID)
		dev.ClearAllDirty()
		if s.brk != nil {
			s.brk.NotifyDirty(dev, true)
		}
		return errs.CodeSystem
	}

	err := reg.Driver.Commit(dev)
	if err == nil {
		if ap := dev.ActiveProfile(); ap != nil && ap.IsActiveDirty {
			if aErr := reg.Driver.SetActiveProfile(dev, ap.Index); aErr != nil {
				s.log.Error("driver SetActiveProfile failed on a profile it just committed as active, treating as a driver bug",
					"driver", reg.ID, "sysname", dev.Sysname, "profile", ap.Index, "error", aErr)
				err = aErr
			}
		}
	} else {
		s.log.Warn("driver commit failed", "driver", reg.ID, "sysname", dev.Sysname, "error", err)
	}

	code := errs.ToCode(err)
	dev.ClearAllDirty()
	if s.brk != nil {
		s.brk.NotifyDirty(dev, err != nil)
	}
	return code
}
