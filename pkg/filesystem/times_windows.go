//go:build windows

package filesystem

import (
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// CopyFileTimeMetadata sets dest's access and modification time to match
// src's. Windows has no no-follow-symlink variant of SetFileTime exposed via
// os.Chtimes, but dit never produces symlink destinations, so this is
// equivalent in practice.
func CopyFileTimeMetadata(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat source file '%s'", src)
	}
	atime := info.ModTime()
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		atime = time.Unix(0, data.LastAccessTime.Nanoseconds())
	}
	if err := os.Chtimes(dest, atime, info.ModTime()); err != nil {
		return errors.Wrapf(err, "unable to set time metadata on '%s'", dest)
	}
	return nil
}
