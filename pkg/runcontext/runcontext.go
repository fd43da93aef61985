// Package runcontext implements dit's two-flag cooperative shutdown model.
//
// Every pipeline stage (the discoverer, each hasher, the arbiter, each
// copier) holds a RunContext. Two independent booleans govern its behavior:
//
//   - running: instructs the stage to stop pulling new work off its input
//     channel(s). Each stage derives its own running flag from the root, so
//     the orchestrator can shut stages down one at a time, in pipeline
//     order.
//   - clean: shared by every derived context and the root. While clean, a
//     stage that observes running == false still drains its input channel
//     to empty before exiting (a graceful stop). The instant anything calls
//     UncleanShutdown, clean flips to false everywhere, and every stage
//     still running abandons its queue immediately instead of draining it.
//
// The distinction is "please finish what's queued" versus "drop
// everything": an error anywhere escalates the whole pipeline to an
// abort, but a normal end-of-discovery shutdown lets every stage flush
// its backlog.
package runcontext

import "sync/atomic"

// RunContext is safe for concurrent use. The zero value is not useful; use
// New to construct a root context and Derive to create per-stage contexts
// from it.
type RunContext struct {
	running *atomic.Bool
	clean   *atomic.Bool
}

// New creates a new root RunContext with running and clean both true.
func New() *RunContext {
	running := &atomic.Bool{}
	running.Store(true)
	clean := &atomic.Bool{}
	clean.Store(true)
	return &RunContext{running: running, clean: clean}
}

// Derive creates a new RunContext with its own independent running flag
// (starting true) but sharing the parent's clean flag by reference, so an
// unclean shutdown on any derived context (or the root) is visible to every
// other context derived from the same root.
func (r *RunContext) Derive() *RunContext {
	running := &atomic.Bool{}
	running.Store(true)
	return &RunContext{running: running, clean: r.clean}
}

// IsRunning reports whether this context's stage should keep pulling new
// work.
func (r *RunContext) IsRunning() bool {
	return r.running.Load()
}

// IsClean reports whether a stage observing a stopped run should drain its
// pending queue (true) or abandon it immediately (false).
func (r *RunContext) IsClean() bool {
	return r.clean.Load()
}

// Shutdown requests a graceful stop of this context only: running becomes
// false, but clean is untouched, so the owning stage will drain its queue
// before exiting.
func (r *RunContext) Shutdown() {
	r.running.Store(false)
}

// UncleanShutdown requests an immediate abort of this context and, because
// clean is shared, of every context derived from the same root: running and
// clean both become false, so no stage drains its queue past this point.
func (r *RunContext) UncleanShutdown() {
	r.clean.Store(false)
	r.running.Store(false)
}
