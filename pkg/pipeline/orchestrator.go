package pipeline

import (
	"strconv"
	"sync"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/message"
	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// The ordering and auxiliary request channels are large (10,000) so
// discovery can run far ahead of hashing and copying without stalling on
// slow I/O, while the result channels are tiny (3) because each occupied
// slot potentially holds a whole file's worth of still page-cached bytes.
const (
	tokenChannelCapacity = 10000
	hashReqChannelCap    = 10000
	hashResChannelCap    = 3
	copyReqChannelCap    = 3
)

// Options configures one run of the pipeline.
type Options struct {
	ReadPaths  []string
	WritePaths []string
	Excludes   []string
	Logger     *logging.Logger
	// Stats, if non-nil, accumulates observational counters (files copied,
	// bytes copied, conflicts encountered) for the duration of the run.
	Stats *Stats
}

// Run performs one full dit merge: it walks the union of every read path's
// subtree, hashes and dedups ambiguous files, and atomically copies the
// resolved contents to every write path. The returned MergeResult is the
// supremum of every per-unit outcome the arbiter computed.
func Run(opts Options) (MergeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard
	}

	stats := opts.Stats
	if stats == nil {
		stats = &Stats{}
	}

	excludes, err := newExcludeSet(opts.Excludes)
	if err != nil {
		return MergeError, err
	}

	filesystem.ResetStatCache()

	root := runcontext.New()

	xferReqChan := make(chan message.TransferKind, tokenChannelCapacity)
	copyToDestChan := make(chan message.CopyToDestRequest, tokenChannelCapacity)

	hashReqChans := make([]chan *message.HashRequest, len(opts.ReadPaths))
	hashResChans := make([]chan *message.HashResult, len(opts.ReadPaths))
	for i := range opts.ReadPaths {
		hashReqChans[i] = make(chan *message.HashRequest, hashReqChannelCap)
		hashResChans[i] = make(chan *message.HashResult, hashResChannelCap)
	}

	copyReqChans := make([]chan message.CopyFileRequest, len(opts.WritePaths))
	for i := range opts.WritePaths {
		copyReqChans[i] = make(chan message.CopyFileRequest, copyReqChannelCap)
	}

	var wg sync.WaitGroup

	// Copy workers: one per write path, consuming the arbiter's resolved
	// (src, dest) pairs for their own destination only.
	copierContexts := make([]*runcontext.RunContext, len(opts.WritePaths))
	for i := range opts.WritePaths {
		rc := root.Derive()
		copierContexts[i] = rc
		w := &copier{rc: rc, logger: logger.Sublogger("copy").Sublogger(strconv.Itoa(i)), in: copyReqChans[i], stats: stats}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run()
		}()
	}

	// Hash workers: one per read path.
	hasherContexts := make([]*runcontext.RunContext, len(opts.ReadPaths))
	for i := range opts.ReadPaths {
		rc := root.Derive()
		hasherContexts[i] = rc
		h := &hasher{rc: rc, logger: logger.Sublogger("hash").Sublogger(strconv.Itoa(i)), in: hashReqChans[i], out: hashResChans[i]}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.run()
		}()
	}

	// Arbiter: the single merge/conflict-resolution stage.
	arbiterRC := root.Derive()
	hashResChansRO := make([]<-chan *message.HashResult, len(hashResChans))
	for i, ch := range hashResChans {
		hashResChansRO[i] = ch
	}
	copyReqChansWO := make([]chan<- message.CopyFileRequest, len(copyReqChans))
	for i, ch := range copyReqChans {
		copyReqChansWO[i] = ch
	}
	arb := &arbiter{
		rc:           arbiterRC,
		logger:       logger.Sublogger("merge"),
		writePaths:   opts.WritePaths,
		xferReq:      xferReqChan,
		copyToDest:   copyToDestChan,
		hashResChans: hashResChansRO,
		copyReqChans: copyReqChansWO,
		stats:        stats,
	}
	var arbResult MergeResult
	arbDone := make(chan struct{})
	go func() {
		defer close(arbDone)
		arbResult = arb.run()
	}()

	// Discoverer: the single producer, run on the calling goroutine so its
	// return error surfaces directly.
	discovererRC := root.Derive()
	hashReqChansWO := make([]chan<- *message.HashRequest, len(hashReqChans))
	for i, ch := range hashReqChans {
		hashReqChansWO[i] = ch
	}
	disc := &discoverer{
		rc:           discovererRC,
		logger:       logger.Sublogger("discover"),
		readPaths:    opts.ReadPaths,
		writePaths:   opts.WritePaths,
		excludes:     excludes,
		xferReq:      xferReqChan,
		copyToDest:   copyToDestChan,
		hashReqChans: hashReqChansWO,
	}

	discErr := disc.run()
	if discErr != nil {
		root.UncleanShutdown()
	}

	// Shut down each stage in pipeline order, giving every downstream stage
	// a chance to drain whatever the upstream stage already queued before
	// its own running flag flips.
	discovererRC.Shutdown()
	for _, rc := range hasherContexts {
		rc.Shutdown()
	}
	arbiterRC.Shutdown()
	<-arbDone
	for _, rc := range copierContexts {
		rc.Shutdown()
	}

	wg.Wait()

	if discErr != nil {
		return MergeError, discErr
	}
	if !root.IsClean() {
		return MergeError, nil
	}
	return arbResult, nil
}
