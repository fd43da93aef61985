package pipeline

import (
	"time"

	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// stageTick is the liveness-poll interval used by every stage's
// send/receive loop so that a RunContext's running flag can be observed
// without an explicit cancellation signal. It is never itself a failure
// condition, only a point at which running/clean get re-checked.
const stageTick = 100 * time.Millisecond

// trySend attempts to send v on ch, polling rc.IsRunning() and rc.IsClean()
// every stageTick while waiting for room in the channel. It returns false
// if rc stops running, or the whole run goes unclean, before the send
// completes, so callers can bail out of a multi-step emission (e.g. the
// discoverer's per-file auxiliary sends) without half-emitting a unit of
// work. Checking IsClean() here, not just IsRunning(), matters because an
// unclean shutdown triggered by an unrelated stage only flips that stage's
// own running flag directly: every other stage's running flag only
// follows once the orchestrator explicitly shuts it down, which can lag an
// abort by one full pipeline teardown. IsClean() is visible everywhere the
// instant it flips.
func trySend[T any](ch chan<- T, v T, rc *runcontext.RunContext) bool {
	timer := time.NewTimer(stageTick)
	defer timer.Stop()
	for rc.IsRunning() && rc.IsClean() {
		select {
		case ch <- v:
			return true
		case <-timer.C:
			timer.Reset(stageTick)
		}
	}
	return false
}

// tryRecv attempts to receive from ch, polling rc.IsRunning() and
// rc.IsClean() every stageTick. It returns (zero, false) if rc stops
// running, or the run goes unclean, before a value arrives.
func tryRecv[T any](ch <-chan T, rc *runcontext.RunContext) (T, bool) {
	var zero T
	timer := time.NewTimer(stageTick)
	defer timer.Stop()
	for rc.IsRunning() && rc.IsClean() {
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, false
			}
			return v, true
		case <-timer.C:
			timer.Reset(stageTick)
		}
	}
	return zero, false
}

// sendResult sends v on ch, polling only rc.IsClean(), never rc.IsRunning().
// It is used to deliver the result for a unit of work a stage has already
// accepted (a hash result, a resolved copy request): running going false
// means "stop pulling new work", not "abandon work already in flight", so
// only an unclean shutdown should ever stop this send from eventually
// landing.
func sendResult[T any](ch chan<- T, v T, rc *runcontext.RunContext) bool {
	timer := time.NewTimer(stageTick)
	defer timer.Stop()
	for rc.IsClean() {
		select {
		case ch <- v:
			return true
		case <-timer.C:
			timer.Reset(stageTick)
		}
	}
	return false
}

// recvWhileClean receives from ch, polling rc.IsClean() every stageTick
// instead of rc.IsRunning(). It is used for the arbiter's mid-token
// payload reads: once a TransferKind token has been accepted, the payload
// it promises is owed regardless of whether this stage's own running flag
// has already flipped (an upstream stage may still be draining toward it).
// The only thing that should ever unblock such a read without a value is
// the whole run going unclean, which is what rc.IsClean() going false
// signals.
func recvWhileClean[T any](ch <-chan T, rc *runcontext.RunContext) (T, bool) {
	var zero T
	timer := time.NewTimer(stageTick)
	defer timer.Stop()
	for rc.IsClean() {
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, false
			}
			return v, true
		case <-timer.C:
			timer.Reset(stageTick)
		}
	}
	return zero, false
}

// drainAll receives every value currently buffered or in-flight on ch,
// polling with a short timeout per receive, until a receive attempt times
// out empty (meaning the channel truly has nothing left to offer right
// now). Used by every stage's post-shutdown drain phase, which only runs
// while the shared clean flag is still true.
func drainAll[T any](ch <-chan T, handle func(T)) {
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return
			}
			handle(v)
		case <-time.After(stageTick):
			return
		}
	}
}
