package pipeline

import (
	"os"
	"path"
	"sort"

	"github.com/pkg/errors"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/message"
	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// discoverer recursively walks the union of every read path's subtree and,
// for each file it finds, dispatches exactly the auxiliary requests the
// arbiter needs plus the one TransferKind token that tells the arbiter
// which auxiliary channel to consume from. This is the system's single
// ordering authority: every other stage's behavior is driven by the order
// these tokens arrive in, not by anything inherent to the hash or copy
// channels themselves.
type discoverer struct {
	rc           *runcontext.RunContext
	logger       *logging.Logger
	readPaths    []string
	writePaths   []string
	excludes     *excludeSet
	xferReq      chan<- message.TransferKind
	copyToDest   chan<- message.CopyToDestRequest
	hashReqChans []chan<- *message.HashRequest
}

// run performs the full recursive discovery starting at the root sub-path.
// A shutdown observed mid-walk is not itself an error: if we're being
// asked to stop, something else already decided the run's fate.
func (d *discoverer) run() error {
	return d.walk("")
}

func (d *discoverer) walk(subPath string) error {
	if !d.rc.IsRunning() {
		return nil
	}

	// Enumerate dirents per read path, skipping dotfiles, and build the
	// sorted union so TransferKind tokens are interleaved in a
	// reproducible, purely-lexicographic order across runs.
	perSource := make([]map[string]struct{}, len(d.readPaths))
	union := make(map[string]struct{})

	for i, readPath := range d.readPaths {
		perSource[i] = make(map[string]struct{})

		dirPath := readPath
		if subPath != "" {
			dirPath = message.JoinSubPath(readPath, subPath)
		}

		entries, err := os.ReadDir(dirPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "unable to read directory '%s'", dirPath)
		}

		for _, entry := range entries {
			name := entry.Name()
			if len(name) > 0 && name[0] == '.' {
				continue
			}
			perSource[i][name] = struct{}{}
			union[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !d.rc.IsRunning() {
			return nil
		}

		subPathPlusName := name
		if subPath != "" {
			subPathPlusName = path.Join(subPath, name)
		}

		if d.excludes.excludes(subPathPlusName, name) {
			continue
		}

		if err := d.visit(subPath, subPathPlusName, name, perSource); err != nil {
			return err
		}
	}

	return nil
}

// visit classifies one dirent (present in at least one read path) and
// dispatches the appropriate requests.
func (d *discoverer) visit(parentSubPath, subPathPlusName, name string, perSource []map[string]struct{}) error {
	isFile := false
	isDir := false
	// filesOrNil[i] is the path (read path i joined with the sub-path) to
	// the file at this sub-path in read path i, or "" if read path i doesn't have a file there. The
	// empty-string placeholder plays the same role as the original's None
	// sentinel: it must still occupy a slot, because the hash channels are
	// read positionally.
	filesOrNil := make([]string, len(d.readPaths))
	actualFilesFound := 0

	for i, readPath := range d.readPaths {
		if _, ok := perSource[i][name]; !ok {
			continue
		}

		fullPath := message.JoinSubPath(readPath, subPathPlusName)
		info, err := os.Lstat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "unable to stat '%s'", fullPath)
		}

		if info.IsDir() {
			isDir = true
		} else {
			// Anything that isn't a directory (regular file, symlink, etc.)
			// is treated as a file for replication purposes; dit has no
			// special handling for symlinks.
			filesOrNil[i] = fullPath
			isFile = true
			actualFilesFound++
		}
	}

	if isFile && isDir {
		return errors.Errorf("path must be a file or directory, not both: '%s'", subPathPlusName)
	}
	if !isFile && !isDir {
		return errors.Errorf("path must be a file or directory: '%s'", subPathPlusName)
	}

	if isDir {
		return d.walk(subPathPlusName)
	}

	// isFile
	if filesystem.AllFilesMatch(d.readPaths, d.writePaths, subPathPlusName) {
		return nil
	}

	if actualFilesFound > 1 {
		return d.dispatchMerge(subPathPlusName, filesOrNil)
	}
	return d.dispatchCopy(subPathPlusName, filesOrNil)
}

// dispatchMerge sends one HashRequest (or nil placeholder) to each of the N
// hash-request channels, in read-path index order, followed by a single
// TransferMerge token. All N auxiliary sends must land before the token
// does, or the arbiter's positional alignment breaks.
func (d *discoverer) dispatchMerge(subPath string, filesOrNil []string) error {
	for i, srcPath := range filesOrNil {
		if !d.rc.IsRunning() {
			return nil
		}

		var req *message.HashRequest
		if srcPath != "" {
			req = &message.HashRequest{SubPath: subPath, SrcPath: srcPath}
		}
		if !trySend(d.hashReqChans[i], req, d.rc) {
			return nil
		}
	}

	if !d.rc.IsRunning() {
		return nil
	}
	trySend(d.xferReq, message.TransferMerge, d.rc)
	return nil
}

// dispatchCopy sends the single CopyToDestRequest for the one read path
// that has this file, followed by a TransferCopy token.
func (d *discoverer) dispatchCopy(subPath string, filesOrNil []string) error {
	for _, srcPath := range filesOrNil {
		if srcPath == "" {
			continue
		}
		if !d.rc.IsRunning() {
			return nil
		}
		if !trySend(d.copyToDest, message.CopyToDestRequest{SubPath: subPath, SrcPath: srcPath}, d.rc) {
			return nil
		}
		if !d.rc.IsRunning() {
			return nil
		}
		trySend(d.xferReq, message.TransferCopy, d.rc)
		return nil
	}
	return nil
}
