package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/message"
	"github.com/ratherlargerobot/dit/pkg/must"
	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// copier is one of the M copy workers, one per write path. It receives
// fully-resolved (src, dest) pairs from the arbiter (dest already carries
// any conflict-tag renaming) and performs the actual crash-safe write.
type copier struct {
	rc     *runcontext.RunContext
	logger *logging.Logger
	in     <-chan message.CopyFileRequest
	stats  *Stats
}

func (c *copier) run() {
	for c.rc.IsRunning() {
		req, ok := tryRecv(c.in, c.rc)
		if !ok {
			break
		}
		if !c.rc.IsClean() {
			continue
		}
		c.handle(req)
	}

	if !c.rc.IsClean() {
		return
	}

	drainAll(c.in, func(req message.CopyFileRequest) {
		if c.rc.IsClean() {
			c.handle(req)
		}
	})
}

// handle performs one crash-safe copy: create a temp file in dest's own
// parent directory, stream the source's bytes into it, propagate atime and
// mtime, chmod it, and atomically rename it into place. At no point does a
// reader observing the destination path see a partially written file.
func (c *copier) handle(req message.CopyFileRequest) {
	if err := c.copyOne(req); err != nil {
		c.logger.Warn("error copying '%s' to '%s': %s", req.SrcPath, req.DestPath, err.Error())
		c.rc.UncleanShutdown()
	}
}

func (c *copier) copyOne(req message.CopyFileRequest) error {
	// A destination that already exists is trusted as-is: it can only have
	// gotten there via a prior rename-commit, so a second run over the same
	// inputs issues no copy operations at all.
	if _, err := os.Stat(req.DestPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to stat destination '%s'", req.DestPath)
	}

	if err := filesystem.EnsureParentDirectory(req.DestPath); err != nil {
		return err
	}

	src, err := os.Open(req.SrcPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open source file '%s'", req.SrcPath)
	}
	defer must.Close(src, c.logger)

	srcInfo, err := src.Stat()
	if err != nil {
		return errors.Wrapf(err, "unable to stat source file '%s'", req.SrcPath)
	}

	destDir := filepath.Dir(req.DestPath)
	tmp, tmpPath, err := filesystem.Mkstemp(destDir)
	if err != nil {
		return err
	}

	closed := false
	defer func() {
		if !closed {
			must.Close(tmp, c.logger)
		}
	}()

	renamed := false
	defer func() {
		if !renamed {
			must.OSRemove(tmpPath, c.logger)
		}
	}()

	if err := filesystem.CopyFile(src, tmp); err != nil {
		return errors.Wrapf(err, "unable to copy '%s' to temporary file '%s'", req.SrcPath, tmpPath)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "unable to close temporary file '%s'", tmpPath)
	}
	closed = true

	if err := filesystem.CopyFileTimeMetadata(req.SrcPath, tmpPath); err != nil {
		return err
	}

	if err := filesystem.Chmod(tmpPath); err != nil {
		return err
	}

	c.logger.Debug("%s -> %s", req.SrcPath, req.DestPath)

	if err := filesystem.AtomicRename(tmpPath, req.DestPath); err != nil {
		return err
	}
	renamed = true

	c.stats.FilesCopied.Add(1)
	c.stats.BytesCopied.Add(srcInfo.Size())

	return nil
}
