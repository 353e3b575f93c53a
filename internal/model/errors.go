package model

import (
	"fmt"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
)

func errCapability(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errs.ErrCapability)
}

func errValue(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errs.ErrValue)
}

func errImplementation(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errs.ErrImplementation)
}
