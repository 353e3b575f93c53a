//go:build linux

package hotplug

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"

	"github.com/ghostcat-linux/ghostcatd/internal/driver"
	"github.com/ghostcat-linux/ghostcatd/internal/model"
)

// sysfsHidrawRoot is where the kernel exposes one directory per hidraw
// device node, used both for initial enumeration and to resolve a
// uevent's DEVPATH into vendor/product identity.
const sysfsHidrawRoot = "/sys/class/hidraw"

// Source is the kernel device-event socket reader, filtered to the HID
// raw subsystem.
type Source struct {
	log hclog.Logger
	fd  int
	buf [8192]byte
}

// Open creates and binds the netlink uevent socket. The caller must call
// Close when done.
func Open(log hclog.Logger) (*Source, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("opening netlink uevent socket: %w", err)
	}
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("binding netlink uevent socket: %w", err)
	}
	// Ask for a generous receive buffer: uevents arrive in bursts during
	// enumeration storms (e.g. a USB hub with several children attached
	// at once) and a dropped datagram means a missed hotplug event with
	// no retry.
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, 1<<20)

	return &Source{log: log.Named("hotplug"), fd: fd}, nil
}

// Close releases the netlink socket.
func (s *Source) Close() error {
	return unix.Close(s.fd)
}

// FD returns the socket file descriptor for the reactor to multiplex.
func (s *Source) FD() int {
	return s.fd
}

// ReadEvent reads and decodes one pending uevent. ok is false when no
// uevent was ready (EAGAIN) or it wasn't relevant to this daemon (wrong
// subsystem, or a sysname without the HID raw prefix).
func (s *Source) ReadEvent() (ev Event, ok bool, err error) {
	n, _, errno := unix.Recvfrom(s.fd, s.buf[:], 0)
	if errno != nil {
		if errno == unix.EAGAIN {
			return Event{}, false, nil
		}
		return Event{}, false, errno
	}
	if n <= 0 {
		return Event{}, false, nil
	}

	u := parseUevent(s.buf[:n])
	if u.subsystem != "hid" && u.subsystem != "hidraw" {
		return Event{}, false, nil
	}
	sysname := filepath.Base(u.devpath)
	if !strings.HasPrefix(sysname, SysnamePrefix) {
		return Event{}, false, nil
	}

	action := parseAction(u.action)
	id := driver.Identity{Sysname: sysname}
	if action != ActionRemove {
		id = identityFromSysfs(sysname)
	}
	return Event{Sysname: sysname, Action: action, Identity: id}, true, nil
}

// Enumerate replays the current state of every matching device already
// present at startup, as if each had just generated an "add" uevent. It
// runs once at startup over all initialized matching devices.
func Enumerate() ([]Event, error) {
	entries, err := os.ReadDir(sysfsHidrawRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", sysfsHidrawRoot, err)
	}

	var events []Event
	for _, ent := range entries {
		sysname := ent.Name()
		if !strings.HasPrefix(sysname, SysnamePrefix) {
			continue
		}
		events = append(events, Event{Sysname: sysname, Action: ActionAdd, Identity: identityFromSysfs(sysname)})
	}
	return events, nil
}

type uevent struct {
	action    string
	devpath   string
	subsystem string
	devtype   string
}

func parseUevent(data []byte) uevent {
	var u uevent
	for _, line := range bytes.Split(data, []byte{0}) {
		if len(line) == 0 {
			continue
		}
		s := string(line)
		if idx := strings.IndexByte(s, '='); idx >= 0 {
			switch s[:idx] {
			case "ACTION":
				u.action = s[idx+1:]
			case "DEVPATH":
				u.devpath = s[idx+1:]
			case "SUBSYSTEM":
				u.subsystem = s[idx+1:]
			case "DEVTYPE":
				u.devtype = s[idx+1:]
			}
			continue
		}
		if at := strings.IndexByte(s, '@'); at > 0 {
			u.action = s[:at]
			u.devpath = s[at+1:]
		}
	}
	return u
}

func parseAction(a string) Action {
	switch a {
	case "add":
		return ActionAdd
	case "change":
		return ActionChange
	case "remove":
		return ActionRemove
	default:
		return ActionUnknown
	}
}

// identityFromSysfs reads the hidraw device's parent "device/uevent"
// file in sysfs (HID_ID=bus:vendor:product, HID_NAME=...) to recover the
// identity fields udev would otherwise hand the daemon via libudev.
// Missing or unreadable files yield a zero Identity; probing still
// proceeds, it just can't be matched against a vendor driver that keys
// off vendor/product.
func identityFromSysfs(sysname string) driver.Identity {
	id := driver.Identity{Sysname: sysname}

	f, err := os.Open(filepath.Join(sysfsHidrawRoot, sysname, "device", "uevent"))
	if err != nil {
		return id
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key, value := line[:idx], line[idx+1:]
		if key != "HID_ID" {
			continue
		}
		parts := strings.Split(value, ":")
		if len(parts) != 3 {
			continue
		}
		busCode, _ := strconv.ParseUint(parts[0], 16, 32)
		vendor, _ := strconv.ParseUint(parts[1], 16, 32)
		product, _ := strconv.ParseUint(parts[2], 16, 32)
		id.Bus = busKindFromCode(uint32(busCode))
		id.VendorID = uint32(vendor)
		id.ProductID = uint32(product)
	}
	return id
}

// busKindFromCode maps the kernel's BUS_* codes (include/uapi/linux/input.h)
// relevant to HID transports onto model.BusKind.
func busKindFromCode(code uint32) model.BusKind {
	switch code {
	case 0x03: // BUS_USB
		return model.BusUSB
	case 0x05: // BUS_BLUETOOTH
		return model.BusBluetooth
	default:
		return model.BusUnknown
	}
}
