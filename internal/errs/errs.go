// Package errs implements the error taxonomy of the daemon: device,
// capability, value, system and implementation errors. Bus-facing code
// inspects these with errors.Is/errors.As to pick a numeric method
// return code instead of letting Go errors leak onto the wire.
package errs

import "errors"

// Sentinel errors, one per taxonomy entry. Wrap with fmt.Errorf("...: %w", ErrX)
// to attach context while keeping errors.Is working.
var (
	// ErrNoDevice means the hardware rejected the operation or the
	// device isn't supported by any registered driver.
	ErrNoDevice = errors.New("device error")

	// ErrCapability means the entity doesn't support the requested
	// change (e.g. disabling a profile without the DISABLE capability).
	ErrCapability = errors.New("capability error")

	// ErrValue means the caller's parameters are out of range or violate
	// a model invariant.
	ErrValue = errors.New("value error")

	// ErrSystem means a low-level OS operation failed.
	ErrSystem = errors.New("system error")

	// ErrImplementation means a driver broke its contract. Always logged
	// as a bug; triggers Resync when encountered during commit.
	ErrImplementation = errors.New("implementation error")
)

// Code is the integer returned across the bus for a method call. 0 means
// success; the daemon never returns negative numbers over D-Bus (uint32
// wire type), so failures map to small positive codes.
type Code uint32

const (
	CodeOK Code = iota
	CodeNoDevice
	CodeCapability
	CodeValue
	CodeSystem
	CodeImplementation
)

// ToCode maps an error produced by this package (or wrapping one of its
// sentinels) to the bus return code. A nil error maps to CodeOK; an
// unrecognized error defaults to CodeSystem since it means something
// failed that the taxonomy didn't anticipate.
func ToCode(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNoDevice):
		return CodeNoDevice
	case errors.Is(err, ErrCapability):
		return CodeCapability
	case errors.Is(err, ErrValue):
		return CodeValue
	case errors.Is(err, ErrImplementation):
		return CodeImplementation
	case errors.Is(err, ErrSystem):
		return CodeSystem
	default:
		return CodeSystem
	}
}
