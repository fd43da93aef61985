//go:build !windows && !linux && !darwin

package filesystem

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// CopyFileTimeMetadata sets dest's access and modification time to match
// src's, with nanosecond precision, without following symlinks. This covers
// the remaining POSIX platforms (the BSDs), whose Stat_t layout matches
// Linux's Atim/Mtim naming.
func CopyFileTimeMetadata(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat source file '%s'", src)
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.New("unable to read platform-specific source metadata")
	}

	times := [2]unix.Timespec{
		{Sec: int64(stat.Atim.Sec), Nsec: int64(stat.Atim.Nsec)},
		{Sec: int64(stat.Mtim.Sec), Nsec: int64(stat.Mtim.Nsec)},
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, dest, times[:], unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return errors.Wrapf(err, "unable to set time metadata on '%s'", dest)
	}
	return nil
}
