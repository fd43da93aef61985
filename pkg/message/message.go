// Package message defines the wire types passed between dit's pipeline
// stages over Go channels. None of these are serialized (they only ever
// travel in-process), but they are kept as a distinct package because
// their shapes are the contract: the ordering and alignment guarantees
// the arbiter depends on come entirely from when and in what order these
// values are sent, not from any field inside them.
package message

import "path/filepath"

// TransferKind is the tagless instruction enqueued once per discovered file,
// telling the arbiter whether the matching payload is waiting on the
// copy-to-dest channel or spread across the per-source hash-result
// channels. It deliberately carries no payload: keeping the ordering channel
// cheap is what lets discovery run far ahead of hashing and copying without
// blocking on slow I/O.
type TransferKind int

const (
	// TransferCopy indicates exactly one source had the file at this
	// sub-path; the payload is on the copy-to-dest channel.
	TransferCopy TransferKind = iota
	// TransferMerge indicates more than one source had the file at this
	// sub-path; the payload is one element per read path on the hash-result
	// channels (present or absence, in read-path index order).
	TransferMerge
)

func (k TransferKind) String() string {
	switch k {
	case TransferCopy:
		return "copy"
	case TransferMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// HashRequest asks a hash worker to hash the content of SrcPath. A nil
// *HashRequest sent on a hash-request channel is the positional placeholder
// meaning "this read path had nothing at this sub-path"; it must still be
// sent, so that every hasher's input stream stays aligned with every other
// hasher's, and with the arbiter's hash-result reads.
type HashRequest struct {
	SubPath string
	SrcPath string
}

// HashResult carries the outcome of hashing a HashRequest. Like
// *HashRequest, a nil *HashResult is a positional placeholder, not an
// error.
type HashResult struct {
	SubPath string
	SrcPath string
	Hash    string
}

// CopyToDestRequest names the single source file to copy to every
// destination for a sub-path where only one read path had the file.
type CopyToDestRequest struct {
	SubPath string
	SrcPath string
}

// CopyFileRequest asks a copy worker to materialize SrcPath at DestPath in
// its one write path, atomically.
type CopyFileRequest struct {
	SrcPath  string
	DestPath string
}

// JoinSubPath joins a write path with a sub-path using the platform
// separator, the same way every destination path in the arbiter and copy
// worker is constructed.
func JoinSubPath(base, subPath string) string {
	return filepath.Join(base, filepath.FromSlash(subPath))
}
