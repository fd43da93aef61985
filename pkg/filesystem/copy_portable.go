//go:build !linux && !android

package filesystem

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// CopyFile copies the entire contents of src into dest, both of which must
// already be open. This is the portable read/write-loop fallback used on
// every platform other than Linux/Android, which instead use the sendfile(2)
// fast path (see copy_linux.go).
func CopyFile(src, dest *os.File) error {
	buf := make([]byte, hashBufferSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dest.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "write error")
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			return errors.Wrap(err, "read error")
		}
	}
	return nil
}
