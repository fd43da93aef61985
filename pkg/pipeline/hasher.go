package pipeline

import (
	"github.com/ratherlargerobot/dit/pkg/filesystem"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/message"
	"github.com/ratherlargerobot/dit/pkg/runcontext"
)

// hasher is one of the N hash workers, one per read path. It consumes
// *message.HashRequest (nil meaning "no file for this read path at this
// sub-path") and emits the corresponding *message.HashResult, preserving
// the nil/non-nil shape so the arbiter's positional reads stay aligned.
type hasher struct {
	rc     *runcontext.RunContext
	logger *logging.Logger
	in     <-chan *message.HashRequest
	out    chan<- *message.HashResult
}

func (h *hasher) run() {
	for h.rc.IsRunning() {
		req, ok := tryRecv(h.in, h.rc)
		if !ok {
			break
		}
		if !h.rc.IsClean() {
			continue
		}
		h.handle(req)
	}

	if !h.rc.IsClean() {
		return
	}

	drainAll(h.in, func(req *message.HashRequest) {
		if h.rc.IsClean() {
			h.handle(req)
		}
	})
}

func (h *hasher) handle(req *message.HashRequest) {
	if req == nil {
		h.send(nil)
		return
	}

	hash, err := filesystem.HashFile(req.SrcPath)
	if err != nil {
		h.logger.Warn("error hashing file '%s': %s", req.SrcPath, err.Error())
		h.rc.UncleanShutdown()
		// clean is already false here, so this send returns without
		// delivering anything; the arbiter's positional read of this
		// source's slot does not hang, because recvWhileClean also gives up
		// once the run is unclean.
		h.send(nil)
		return
	}

	h.send(&message.HashResult{SubPath: req.SubPath, SrcPath: req.SrcPath, Hash: hash})
}

func (h *hasher) send(res *message.HashResult) {
	sendResult(h.out, res, h.rc)
}
