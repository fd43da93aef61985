// Package dit ties the pipeline together with the path parsing and
// validation rules that sit in front of it: the flat "read ... write ..."
// CLI grammar, path normalization, and pre-flight existence checks.
package dit

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
)

// ReadWritePaths holds the fully-parsed, not-yet-validated set of read and
// write paths for one run.
type ReadWritePaths struct {
	ReadPaths  []string
	WritePaths []string
}

// mode is the accumulator switch driven by the "read"/"write" positional
// tokens in the CLI grammar.
type mode int

const (
	modeNone mode = iota
	modeRead
	modeWrite
)

// ParseCLIPaths implements the original "dit read <src...> write <dest...>"
// grammar: "read" and "write" are positional mode-switch tokens, not flags,
// and every other argument is appended to whichever accumulator is
// currently active. At least one read path and one write path are
// required.
func ParseCLIPaths(args []string) (ReadWritePaths, error) {
	var rw ReadWritePaths
	current := modeNone

	for _, arg := range args {
		switch arg {
		case "read":
			current = modeRead
		case "write":
			current = modeWrite
		default:
			path, err := NormalizePath(arg)
			if err != nil {
				return ReadWritePaths{}, err
			}
			switch current {
			case modeRead:
				rw.ReadPaths = append(rw.ReadPaths, path)
			case modeWrite:
				rw.WritePaths = append(rw.WritePaths, path)
			default:
				return ReadWritePaths{}, errors.Errorf("unexpected argument '%s' before 'read' or 'write'", arg)
			}
		}
	}

	if len(rw.ReadPaths) == 0 {
		return ReadWritePaths{}, errors.New("at least one read path is required")
	}
	if len(rw.WritePaths) == 0 {
		return ReadWritePaths{}, errors.New("at least one write path is required")
	}

	return rw, nil
}

// NormalizePath strips every trailing slash and rejects the literal root
// path (or any run of slashes, which stripping reduces to nothing)
// outright: dit never treats an entire filesystem root as a read or write
// path.
func NormalizePath(path string) (string, error) {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		// path was "/" or a run of slashes.
		return "", errors.Errorf("'/' is not a valid read or write path")
	}
	return trimmed, nil
}

// Merge places extra read/write paths (e.g. from a config manifest) before
// this set's own, in order, without altering the order within either set.
func (rw ReadWritePaths) Merge(extra ReadWritePaths) ReadWritePaths {
	return ReadWritePaths{
		ReadPaths:  append(append([]string{}, extra.ReadPaths...), rw.ReadPaths...),
		WritePaths: append(append([]string{}, extra.WritePaths...), rw.WritePaths...),
	}
}

// EnsureValidReadWritePaths validates every read path exists and is a
// directory, and ensures every write path exists as a directory, creating
// it non-recursively if it's simply missing. A write path that exists but
// is not a directory is rejected.
func EnsureValidReadWritePaths(rw ReadWritePaths) error {
	for _, readPath := range rw.ReadPaths {
		info, err := os.Stat(readPath)
		if err != nil {
			return errors.Wrapf(err, "read path '%s' does not exist or is inaccessible", readPath)
		}
		if !info.IsDir() {
			return errors.Errorf("read path '%s' is not a directory", readPath)
		}
	}

	for _, writePath := range rw.WritePaths {
		info, err := os.Stat(writePath)
		if err == nil {
			if !info.IsDir() {
				return errors.Errorf("write path '%s' exists and is not a directory", writePath)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to stat write path '%s'", writePath)
		}
		if err := filesystem.Mkdir(writePath); err != nil {
			return err
		}
	}

	return nil
}
