package dit

import (
	"github.com/google/uuid"

	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/pipeline"
)

// CopyOptions configures one top-level run.
type CopyOptions struct {
	Paths    ReadWritePaths
	Excludes []string
	Logger   *logging.Logger
	// Stats, if non-nil, is populated with observational counters for the
	// run (files copied, bytes copied, conflicts encountered).
	Stats *pipeline.Stats
}

// Copy validates the given paths and runs the full discover/hash/merge/copy
// pipeline over them. It is the single entry point cmd/dit calls into.
func Copy(opts CopyOptions) (pipeline.MergeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard
	}

	if err := EnsureValidReadWritePaths(opts.Paths); err != nil {
		return pipeline.MergeError, err
	}

	runID := uuid.NewString()
	logger.Info("starting run %s (%d read path(s), %d write path(s))", runID, len(opts.Paths.ReadPaths), len(opts.Paths.WritePaths))

	return pipeline.Run(pipeline.Options{
		ReadPaths:  opts.Paths.ReadPaths,
		WritePaths: opts.Paths.WritePaths,
		Excludes:   opts.Excludes,
		Logger:     logger,
		Stats:      opts.Stats,
	})
}
