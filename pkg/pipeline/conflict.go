package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
)

// conflictDestPath builds the destination path for a conflict-named copy:
// "<parent>/<stem>.__<tag>__<hash>.<ext>", where stem is the source file's
// name before its last '.' (or the whole name if its only '.' is a leading
// one, or it has none), and the extension is appended only if one exists. If hash is
// empty (the source's hash couldn't be probed on demand), the name is
// emitted without the hash portion, still unambiguous by tag and source
// path.
func conflictDestPath(writePath, srcPath, subPath, hash, tag string) string {
	parent := filepath.Dir(subPath)

	base := filepath.Base(srcPath)
	stem, ext := splitStemExt(base)

	var name strings.Builder
	if stem != "" {
		name.WriteString(stem)
		name.WriteByte('.')
	}
	name.WriteString("__")
	name.WriteString(tag)
	name.WriteString("__")
	if hash == "" {
		if probed, err := filesystem.HashFile(srcPath); err == nil {
			hash = probed
		}
	}
	name.WriteString(hash)
	if ext != "" {
		name.WriteByte('.')
		name.WriteString(ext)
	}

	destDir := writePath
	if parent != "." {
		destDir = filepath.Join(writePath, parent)
	}
	return filepath.Join(destDir, name.String())
}

// splitStemExt mimics Rust's Path::file_stem/extension: the extension is
// the portion of the name after the final '.', unless the name has no '.'
// or begins with '.' and has no other '.' within, in which case there is no
// extension and the stem is the whole name.
func splitStemExt(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}
