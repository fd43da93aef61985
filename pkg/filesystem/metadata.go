package filesystem

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/groupcache/lru"
)

// statCacheSize bounds the per-run stat cache. A deep tree with wide
// fan-out at each directory level can probe the same destination path from
// several sibling AllFilesMatch/HasWriteMergeConflict calls in quick
// succession; this just needs to be "big enough for the current directory
// level's fan-out", not unbounded, so a fixed size is fine.
const statCacheSize = 4096

// statCache memoizes os.Stat results for the duration of a single run. It's
// a plain size-probe cache, not a correctness mechanism: dit never relies on
// the cached value outliving the run, and nothing invalidates an entry
// mid-run because no path is probed again after dit writes to it
// (destinations are written once, by a different code path, after the
// probes for that sub-path already returned).
type statCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// statEntry is what's stored in the cache: either a successfully read size,
// or the fact that the stat failed (existed == false covers both "does not
// exist" and "could not be read", which is all callers here care about).
type statEntry struct {
	size   int64
	exists bool
}

func newStatCache() *statCache {
	return &statCache{cache: lru.New(statCacheSize)}
}

func (c *statCache) stat(path string) statEntry {
	c.mu.Lock()
	if v, ok := c.cache.Get(path); ok {
		c.mu.Unlock()
		return v.(statEntry)
	}
	c.mu.Unlock()

	info, err := os.Stat(path)
	var entry statEntry
	if err == nil {
		entry = statEntry{size: info.Size(), exists: true}
	}

	c.mu.Lock()
	c.cache.Add(path, entry)
	c.mu.Unlock()

	return entry
}

// sharedStatCache is reused by the discoverer and the arbiter within a
// single process invocation of Run; copy workers stat paths directly. It is
// safe for concurrent use.
var sharedStatCache = newStatCache()

// ResetStatCache discards all cached stat results. Run calls this at the
// start of every invocation so that successive Run calls in the same
// process (as in tests) never see stale entries from a previous run.
func ResetStatCache() {
	sharedStatCache = newStatCache()
}

// AllFilesMatch reports whether every existing source file at subPath
// across readPaths shares one byte length, and every destination in
// writePaths exists with that same length, in which case the file unit can
// be skipped entirely, with no hashing and no copying. At least one read
// path must have the file; callers guarantee this before calling.
func AllFilesMatch(readPaths, writePaths []string, subPath string) bool {
	var size int64
	found := false

	for _, readPath := range readPaths {
		entry := sharedStatCache.stat(filepath.Join(readPath, filepath.FromSlash(subPath)))
		if !entry.exists {
			continue
		}
		if !found {
			size = entry.size
			found = true
		} else if entry.size != size {
			return false
		}
	}

	if !found {
		// The caller is responsible for only calling AllFilesMatch when at
		// least one source has the file; this would indicate a discovery
		// bug, not a legitimate "no sources" case.
		return false
	}

	for _, writePath := range writePaths {
		entry := sharedStatCache.stat(filepath.Join(writePath, filepath.FromSlash(subPath)))
		if !entry.exists || entry.size != size {
			return false
		}
	}

	return true
}

// HasWriteMergeConflict reports whether writing srcPath to subPath in any of
// writePaths would conflict with an existing destination file of a
// different size. A failure to stat srcPath, or a stat failure on an
// existing destination, is treated fail-closed (returns true): assume the
// worst rather than silently overwrite something unexpected.
func HasWriteMergeConflict(writePaths []string, srcPath, subPath string) bool {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return true
	}

	for _, writePath := range writePaths {
		destPath := filepath.Join(writePath, filepath.FromSlash(subPath))
		if _, err := os.Stat(destPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return true
		}
		entry := sharedStatCache.stat(destPath)
		if !entry.exists || entry.size != srcInfo.Size() {
			return true
		}
	}

	return false
}
