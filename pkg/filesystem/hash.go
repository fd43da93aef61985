package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

// hashBufferSize is the buffer size used when streaming a file through the
// hasher. 8KiB balances syscall overhead against peak memory usage across
// however many hash workers are running concurrently (one per read path).
const hashBufferSize = 8192

// HashFile streams the file at path through SHA-256 and returns its digest
// as lower-case hex, the same format used for conflict-file suffixes. It
// retries on transient interrupted-read errors and stops cleanly at EOF;
// any other I/O error aborts the hash.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "unable to open file for hashing")
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, hashBufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := hasher.Write(buf[:n]); werr != nil {
				return "", errors.Wrap(werr, "unable to update hash state")
			}
		}
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			break
		}
		if errors.Is(err, os.ErrClosed) {
			return "", errors.Wrap(err, "file closed during hashing")
		}
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			return "", errors.Wrapf(err, "error reading file: '%s'", path)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
