//go:build !windows

package filesystem

import (
	"errors"
	"syscall"
)

// isInterrupted reports whether err represents a transient EINTR condition
// that should simply be retried, rather than aborting the hash or copy
// loop it occurred in.
func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
