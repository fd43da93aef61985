package pipeline

import "sync/atomic"

// Stats accumulates purely observational counters across a single run, for
// the CLI's optional --stats summary line. Nothing in the merge algorithm
// reads these back; they are write-only from the pipeline's point of view.
type Stats struct {
	FilesCopied atomic.Int64
	BytesCopied atomic.Int64
	Conflicts   atomic.Int64
}
