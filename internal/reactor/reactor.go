// Package reactor implements the daemon's single-goroutine event loop:
// kernel hotplug events, a periodic active-resolution poll, deferred
// one-shot tasks (commits) and process signals all funnel through one
// select loop, so model mutation never needs its own locking.
package reactor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"

	"github.com/ghostcat-linux/ghostcatd/internal/hotplug"
)

// ResolutionPollInterval is how often the reactor asks every linked
// device's driver to refresh its active resolution.
const ResolutionPollInterval = 2 * time.Second

// IdleTimeout is how long the reactor waits without processing a single
// event before exiting voluntarily (systemd can restart the daemon on
// the next bus activation).
const IdleTimeout = 20 * time.Minute

// Task is a deferred one-shot unit of work, run on the reactor goroutine
// so it never races with bus method handlers or hotplug processing.
type Task func()

// Reactor owns the hotplug socket's readability watcher and multiplexes
// it against a deferred-task queue, a resolution-poll ticker and process
// signals.
type Reactor struct {
	log    hclog.Logger
	source *hotplug.Source

	hotplugCh chan hotplug.Event
	deferred  chan Task

	onHotplug        func(hotplug.Event)
	onResolutionPoll func()

	stopWatcher chan struct{}
}

// New returns a Reactor reading hotplug events from source. Call
// SetHotplugHandler and SetResolutionPollHandler before Run.
func New(log hclog.Logger, source *hotplug.Source) *Reactor {
	return &Reactor{
		log:         log.Named("reactor"),
		source:      source,
		hotplugCh:   make(chan hotplug.Event, 16),
		deferred:    make(chan Task, 64),
		stopWatcher: make(chan struct{}),
	}
}

// SetHotplugHandler installs the callback invoked for each decoded
// hotplug event.
func (r *Reactor) SetHotplugHandler(fn func(hotplug.Event)) {
	r.onHotplug = fn
}

// SetResolutionPollHandler installs the callback invoked every
// ResolutionPollInterval.
func (r *Reactor) SetResolutionPollHandler(fn func()) {
	r.onResolutionPoll = fn
}

// Defer enqueues task to run on the reactor goroutine. It never blocks
// callers for long: the queue is large enough that a burst of commits
// doesn't stall the caller, but a genuinely wedged reactor will still
// eventually apply backpressure.
func (r *Reactor) Defer(task Task) {
	r.deferred <- task
}

// Run blocks until ctx is canceled, SIGINT/SIGTERM arrives, or the
// reactor has processed nothing for IdleTimeout. It signals readiness to
// systemd once the loop is actually receiving events.
func (r *Reactor) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go r.watchHotplug()
	defer close(r.stopWatcher)

	ticker := time.NewTicker(ResolutionPollInterval)
	defer ticker.Stop()

	idle := time.NewTimer(IdleTimeout)
	defer idle.Stop()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		r.log.Warn("sd_notify READY failed", "error", err)
	} else if !ok {
		r.log.Debug("sd_notify: not running under systemd, skipping readiness notification")
	}

	var watchdogC <-chan time.Time
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		wt := time.NewTicker(interval / 2)
		defer wt.Stop()
		watchdogC = wt.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sig := <-sigCh:
			r.log.Info("received signal, shutting down", "signal", sig)
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return nil

		case ev := <-r.hotplugCh:
			if r.onHotplug != nil {
				r.onHotplug(ev)
			}
			resetIdle(idle)

		case task := <-r.deferred:
			task()
			resetIdle(idle)

		case <-ticker.C:
			if r.onResolutionPoll != nil {
				r.onResolutionPoll()
			}
			resetIdle(idle)

		case <-watchdogC:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)

		case <-idle.C:
			r.log.Info("idle timeout reached, exiting")
			return nil
		}
	}
}

func resetIdle(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(IdleTimeout)
}

// watchHotplug blocks on unix.Poll against the (non-blocking) netlink
// socket and decodes readable events onto hotplugCh. It runs on its own
// goroutine because the reactor's main select loop can't itself block on
// a raw file descriptor's readability without a poll(2) wrapper.
func (r *Reactor) watchHotplug() {
	pfd := []unix.PollFd{{Fd: int32(r.source.FD()), Events: unix.POLLIN}}
	for {
		select {
		case <-r.stopWatcher:
			return
		default:
		}

		n, err := unix.Poll(pfd, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			r.log.Error("poll on hotplug socket failed", "error", err)
			return
		}
		if n == 0 {
			continue
		}

		for {
			ev, ok, err := r.source.ReadEvent()
			if err != nil {
				r.log.Error("reading hotplug event failed", "error", err)
				break
			}
			if !ok {
				break
			}
			select {
			case r.hotplugCh <- ev:
			case <-r.stopWatcher:
				return
			}
		}
	}
}
