package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// TemporaryNamePrefix is the prefix used for temp files created inside a
// destination parent directory while a copy worker is streaming a file into
// place. It is the only name under which a partially written artifact can
// ever be observed: no destination target path is ever partially written,
// because the temp file only gets its target name via an atomic rename
// once it's fully formed.
const TemporaryNamePrefix = "__tmp_dit_"

// Mkstemp creates a new temp file inside baseDir, named
// "<baseDir>/__tmp_dit_XXXXXX" with a securely random suffix, and returns it
// open for writing along with its path. The caller becomes the exclusive
// owner of the returned file and is responsible for closing it.
func Mkstemp(baseDir string) (*os.File, string, error) {
	f, err := os.CreateTemp(baseDir, TemporaryNamePrefix+"*")
	if err != nil {
		return nil, "", errors.Wrap(err, "unable to create temporary file")
	}
	return f, f.Name(), nil
}

// Chmod sets the file at path to mode 0644, the only permission mode dit
// ever writes: dit never preserves source permissions or ownership.
func Chmod(path string) error {
	if err := os.Chmod(path, 0644); err != nil {
		return errors.Wrapf(err, "unable to chmod '%s'", path)
	}
	return nil
}

// Mkdir creates a single directory level; it fails if the parent is missing.
func Mkdir(path string) error {
	if err := os.Mkdir(path, 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory '%s'", path)
	}
	return nil
}

// MkdirAll recursively creates path, succeeding without error if every
// component already exists as a directory.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "unable to recursively create directory '%s'", path)
	}
	return nil
}

// AtomicRename renames src to dest. On POSIX platforms this is guaranteed
// atomic by the underlying rename(2) system call, provided src and dest
// share a filesystem, a guarantee the copy worker maintains by always
// creating its temp file inside dest's own parent directory.
func AtomicRename(src, dest string) error {
	if err := os.Rename(src, dest); err != nil {
		if isCrossDeviceError(err) {
			return errors.Wrapf(err, "cannot atomically rename across filesystems: '%s' -> '%s'", src, dest)
		}
		return errors.Wrapf(err, "could not rename '%s' to '%s'", src, dest)
	}
	return nil
}

// EnsureParentDirectory ensures that the parent directory of path exists,
// creating it (and any missing ancestors) on demand. It mirrors the copy
// worker's "create the destination directory recursively if it doesn't
// exist" step. This only ever applies to directories nested under a write
// path; top-level write paths are created non-recursively, during
// validation, never here.
func EnsureParentDirectory(path string) error {
	parent := filepath.Dir(path)
	if info, err := os.Stat(parent); err == nil && info.IsDir() {
		return nil
	}
	return MkdirAll(parent)
}
