package pipeline

import (
	"sort"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/message"
	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// arbiter is the single consumer of the transfer-request token stream, the
// copy-to-dest stream, and every hash-result stream. Being the only
// consumer of all three is what makes its positional alignment correct
// without any locking: nothing else can interleave a read between the
// arbiter's own sequential channel operations.
type arbiter struct {
	rc           *runcontext.RunContext
	logger       *logging.Logger
	writePaths   []string
	xferReq      <-chan message.TransferKind
	copyToDest   <-chan message.CopyToDestRequest
	hashResChans []<-chan *message.HashResult
	copyReqChans []chan<- message.CopyFileRequest
	stats        *Stats
}

func (a *arbiter) run() MergeResult {
	result := MergeOk

	for a.rc.IsRunning() {
		kind, ok := tryRecv(a.xferReq, a.rc)
		if !ok {
			break
		}
		result = maxResult(result, a.handle(kind))
	}

	if !a.rc.IsClean() {
		return result
	}

	drainAll(a.xferReq, func(kind message.TransferKind) {
		result = maxResult(result, a.handle(kind))
	})

	return result
}

func (a *arbiter) handle(kind message.TransferKind) MergeResult {
	switch kind {
	case message.TransferCopy:
		return a.handleCopyToDest()
	case message.TransferMerge:
		return a.handleMerge()
	default:
		a.logger.Error("unrecognized transfer token")
		a.rc.UncleanShutdown()
		return MergeError
	}
}

// handleCopyToDest handles a TransferCopy token: exactly one source had the
// file, so it's copied (or conflict-renamed on a per-destination basis) to
// every write path.
func (a *arbiter) handleCopyToDest() MergeResult {
	req, ok := recvWhileClean(a.copyToDest, a.rc)
	if !ok {
		if a.rc.IsClean() {
			a.logger.Warn("copy-to-dest channel closed unexpectedly")
			a.rc.UncleanShutdown()
		}
		return MergeError
	}

	a.logger.Info("%s", req.SubPath)

	conflict := filesystem.HasWriteMergeConflict(a.writePaths, req.SrcPath, req.SubPath)
	for i, writePath := range a.writePaths {
		dest := a.destinationFor(writePath, req.SrcPath, req.SubPath, "", conflict)
		if conflict {
			a.logger.Warn("%s -> %s", req.SrcPath, dest)
		}
		if !a.sendCopy(i, message.CopyFileRequest{SrcPath: req.SrcPath, DestPath: dest}) {
			return MergeError
		}
	}

	if conflict {
		a.stats.Conflicts.Add(1)
		return MergeConflict
	}
	return MergeOk
}

// handleMerge handles a TransferMerge token: the arbiter reads exactly one
// element from each of the N hash-result channels, in read-path index
// order, so results stay attributable to the right source even though the
// hashers ran independently and concurrently.
func (a *arbiter) handleMerge() MergeResult {
	firstSeen := make(map[string]message.HashResult)
	var order []string

	for _, ch := range a.hashResChans {
		res, ok := recvWhileClean(ch, a.rc)
		if !ok {
			if a.rc.IsClean() {
				a.logger.Warn("hash result channel closed unexpectedly")
				a.rc.UncleanShutdown()
			}
			return MergeError
		}
		if res == nil {
			continue
		}
		if _, exists := firstSeen[res.Hash]; !exists {
			firstSeen[res.Hash] = *res
			order = append(order, res.Hash)
		}
	}

	if len(order) == 0 {
		if a.rc.IsClean() {
			a.logger.Warn("0 hash results received for a merge token")
			a.rc.UncleanShutdown()
		}
		return MergeError
	}

	// Iterate in sorted-by-hash order, matching the deterministic ordered
	// map the arbiter conceptually maintains: conflict file sets and log
	// output depend only on sorted direntry order and content hash, never
	// on goroutine scheduling.
	sort.Strings(order)

	if len(order) == 1 {
		return a.handleMergeAgree(firstSeen[order[0]])
	}
	return a.handleMergeConflict(order, firstSeen)
}

func (a *arbiter) handleMergeAgree(res message.HashResult) MergeResult {
	a.logger.Info("%s", res.SubPath)

	conflict := filesystem.HasWriteMergeConflict(a.writePaths, res.SrcPath, res.SubPath)
	for i, writePath := range a.writePaths {
		dest := a.destinationFor(writePath, res.SrcPath, res.SubPath, res.Hash, conflict)
		if conflict {
			a.logger.Warn("%s -> %s", res.SrcPath, dest)
		}
		if !a.sendCopy(i, message.CopyFileRequest{SrcPath: res.SrcPath, DestPath: dest}) {
			return MergeError
		}
	}

	if conflict {
		a.stats.Conflicts.Add(1)
		return MergeConflict
	}
	return MergeOk
}

func (a *arbiter) handleMergeConflict(order []string, byHash map[string]message.HashResult) MergeResult {
	a.logger.Info("%s", byHash[order[0]].SubPath)

	for i, writePath := range a.writePaths {
		for _, hash := range order {
			res := byHash[hash]
			dest := conflictDestPath(writePath, res.SrcPath, res.SubPath, res.Hash, "READ_MERGE_CONFLICT")
			a.logger.Warn("%s -> %s", res.SrcPath, dest)
			if !a.sendCopy(i, message.CopyFileRequest{SrcPath: res.SrcPath, DestPath: dest}) {
				return MergeError
			}
		}
	}

	a.stats.Conflicts.Add(1)
	return MergeConflict
}

func (a *arbiter) destinationFor(writePath, srcPath, subPath, hash string, conflict bool) string {
	if !conflict {
		return message.JoinSubPath(writePath, subPath)
	}
	return conflictDestPath(writePath, srcPath, subPath, hash, "WRITE_MERGE_CONFLICT")
}

func (a *arbiter) sendCopy(writeIndex int, req message.CopyFileRequest) bool {
	if !a.rc.IsClean() {
		return true
	}
	if !sendResult(a.copyReqChans[writeIndex], req, a.rc) {
		if a.rc.IsClean() {
			a.logger.Warn("error writing copy file request")
			a.rc.UncleanShutdown()
		}
		return false
	}
	return true
}
