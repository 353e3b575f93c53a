// Package hotplug implements the kernel device-event source: a
// NETLINK_KOBJECT_UEVENT socket filtered to the HID raw subsystem, plus
// an initial sysfs enumeration replayed at startup.
package hotplug

import "github.com/ghostcat-linux/ghostcatd/internal/driver"

// SysnamePrefix is the only sysname prefix the hotplug source considers;
// everything else is ignored before it ever reaches the broker.
const SysnamePrefix = "hidraw"

// Action mirrors the kernel uevent ACTION field, narrowed to the three
// actions the daemon reacts to.
type Action int

const (
	ActionUnknown Action = iota
	ActionAdd
	ActionChange
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one decoded hotplug occurrence, dispatched by the reactor to
// the hotplug handler.
type Event struct {
	Sysname  string
	Action   Action
	Identity driver.Identity
}
