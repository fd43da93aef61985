//go:build windows

package filesystem

import (
	"os"
	"syscall"
)

// isCrossDeviceError checks whether or not an error returned by os.Rename is
// due to an attempted rename across devices.
func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	errno, ok := linkErr.Err.(syscall.Errno)
	if !ok {
		return false
	}
	const errorNotSameDevice syscall.Errno = 17
	return errno == errorNotSameDevice
}
