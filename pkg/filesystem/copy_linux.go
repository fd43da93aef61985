//go:build linux || android

package filesystem

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// CopyFile copies the entire contents of src into dest, both of which must
// already be open (dest is expected to be pre-created empty by the caller,
// e.g. via Mkstemp). On Linux and Android this uses the sendfile(2) system
// call for a zero-copy transfer.
func CopyFile(src, dest *os.File) error {
	info, err := src.Stat()
	if err != nil {
		return errors.Wrap(err, "unable to stat source file")
	}
	count := int(info.Size())

	srcFD := int(src.Fd())
	destFD := int(dest.Fd())
	var offset int64

	for count > 0 {
		n, err := unix.Sendfile(destFD, srcFD, &offset, count)
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			return errors.Wrap(err, "sendfile failed")
		}
		if n == 0 {
			break
		}
		count -= n
	}

	return nil
}
