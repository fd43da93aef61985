// Package must contains small helpers for best-effort cleanup operations
// whose errors are worth logging but never worth propagating or aborting a
// run over (closing a file we're about to discard, removing a temp file
// after a failed copy).
package must

import (
	"io"
	"os"

	"github.com/ratherlargerobot/dit/pkg/logging"
)

// Close closes c, logging (but not propagating) any error.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("unable to close: %s", err.Error())
	}
}

// OSRemove removes the file at path, logging (but not propagating) any
// error. It is used to best-effort clean up a temp file after a failed copy
// worker step, so that the temp prefix doesn't accumulate stray files, but a
// cleanup failure is not itself treated as an unclean shutdown.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil {
		logger.Warn("unable to remove temporary file '%s': %s", path, err.Error())
	}
}
