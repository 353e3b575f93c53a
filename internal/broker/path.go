// Package broker implements the object-tree broker: it projects the
// in-memory configuration model as a tree of D-Bus objects under
// RootPath, using github.com/godbus/dbus/v5 plus its introspect and
// prop helper packages.
package broker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
)

// BusNameRoot is the well-known bus name requested at startup.
const BusNameRoot = "org.ghostcat.ghostcatd1"

// RootPath is the object path every subtree lives under.
const RootPath = "/org/ghostcat/ghostcatd1"

// InterfaceRoot is the interface name prefix; concrete interfaces are
// InterfaceRoot+".Manager", ".Device", ".Profile", ".Resolution",
// ".Button", ".Led".
const InterfaceRoot = "org.ghostcat.ghostcatd1"

// encodeSegment escapes an arbitrary-text path segment so it can appear
// literally in a dbus.ObjectPath. Every byte outside [A-Za-z0-9] is
// replaced by "_" followed by two lowercase hex digits; '_' itself is
// escaped too ("_5f"), so '_' never appears in encoded output except as
// the introducer of a two-hex-digit escape. That makes decoding
// unambiguous without any special-casing for numeric-looking segments
// (D-Bus path elements are allowed to start with a digit).
func encodeSegment(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}

// decodeSegment reverses encodeSegment.
func decodeSegment(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return "", fmt.Errorf("malformed escape at offset %d in %q", i, s)
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", err
			}
			b.WriteByte(byte(v))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// EncodeSysname escapes a device sysname for use in an object path.
func EncodeSysname(sysname string) string { return encodeSegment(sysname) }

// DecodeSysname reverses EncodeSysname.
func DecodeSysname(segment string) (string, error) { return decodeSegment(segment) }

// DevicePath returns the object path for a Device.
func DevicePath(sysname string) dbus.ObjectPath {
	return dbus.ObjectPath(RootPath + "/device/" + EncodeSysname(sysname))
}

// ProfilePath returns the object path for a Profile.
func ProfilePath(sysname string, index int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%s/profile/%s/p%d", RootPath, EncodeSysname(sysname), index))
}

// ResolutionPath returns the object path for a Resolution.
func ResolutionPath(sysname string, profileIndex, index int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%s/resolution/%s/p%d/r%d", RootPath, EncodeSysname(sysname), profileIndex, index))
}

// ButtonPath returns the object path for a Button.
func ButtonPath(sysname string, profileIndex, index int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%s/button/%s/p%d/b%d", RootPath, EncodeSysname(sysname), profileIndex, index))
}

// LedPath returns the object path for an LED.
func LedPath(sysname string, profileIndex, index int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%s/led/%s/p%d/l%d", RootPath, EncodeSysname(sysname), profileIndex, index))
}
