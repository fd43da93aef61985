//go:build !windows

package filesystem

import (
	"os"
	"syscall"
)

// isCrossDeviceError checks whether or not an error returned by os.Rename is
// due to an attempted rename across devices (EXDEV). This can't legitimately
// happen in dit, since every temp file is created inside the destination's
// own parent directory, but surfacing it distinctly makes misuse easier to
// diagnose than a bare rename error would.
func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	return linkErr.Err == syscall.EXDEV
}
