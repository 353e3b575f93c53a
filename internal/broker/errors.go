package broker

import "github.com/ghostcat-linux/ghostcatd/internal/errs"

// statusOf maps a model error onto the uint32 status code every mutating
// bus method returns: methods never fail the D-Bus call itself, they
// report failure via an out-parameter instead.
func statusOf(err error) uint32 {
	return uint32(errs.ToCode(err))
}
