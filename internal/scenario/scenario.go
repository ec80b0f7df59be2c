// Package scenario holds the end-to-end checks run against the web store and
// the Airport Gap API. Each check returns nil on success or an error
// wrapping ErrCheckFailed that says what was expected and what was found.
package scenario

import (
	"errors"
	"fmt"
)

// ErrCheckFailed marks an expectation that did not hold, as opposed to an
// error reaching the target
var ErrCheckFailed = errors.New("check failed")

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCheckFailed, fmt.Sprintf(format, args...))
}
