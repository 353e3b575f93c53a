package testdriver

import (
	"errors"
	"fmt"

	"github.com/ghostcat-linux/ghostcatd/internal/errs"
)

var errCommitFailed = fmt.Errorf("synthetic commit failure armed by test: %w", errs.ErrSystem)

var errBadFixture = errors.New("testdriver: fixture is not a *testdevice.Fixture")
