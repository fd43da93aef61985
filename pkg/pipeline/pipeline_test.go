package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ratherlargerobot/dit/pkg/filesystem"
)

func mustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("unable to create directory for %q: %s", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("unable to write %q: %s", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read %q: %s", path, err)
	}
	return content
}

// S1: single source, single dest, new tree. Dotfiles are invisible.
func TestRunSingleSourceNewTree(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "x", "foo.txt"), []byte("hi"))
	mustWriteFile(t, filepath.Join(a, ".hidden"), []byte("y"))

	result, err := Run(Options{ReadPaths: []string{a}, WritePaths: []string{b}})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeOk {
		t.Fatalf("result = %s, want %s", result, MergeOk)
	}

	if got := readFile(t, filepath.Join(b, "x", "foo.txt")); string(got) != "hi" {
		t.Errorf("content = %q, want %q", got, "hi")
	}
	if _, err := os.Stat(filepath.Join(b, ".hidden")); !os.IsNotExist(err) {
		t.Error(".hidden should not have been replicated")
	}
}

// S2: two sources with identical content, two dests; no conflict files.
func TestRunTwoSourcesIdenticalContent(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	c := t.TempDir()
	d := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "p.bin"), []byte{0x00, 0x01})
	mustWriteFile(t, filepath.Join(b, "p.bin"), []byte{0x00, 0x01})

	result, err := Run(Options{ReadPaths: []string{a, b}, WritePaths: []string{c, d}})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeOk {
		t.Fatalf("result = %s, want %s", result, MergeOk)
	}

	for _, dest := range []string{c, d} {
		got := readFile(t, filepath.Join(dest, "p.bin"))
		if len(got) != 2 || got[0] != 0x00 || got[1] != 0x01 {
			t.Errorf("%s/p.bin = %v, want [0 1]", dest, got)
		}
	}

	entries, err := os.ReadDir(c)
	if err != nil {
		t.Fatalf("unable to read %q: %s", c, err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in %q, got %d", c, len(entries))
	}
}

// S3: read merge conflict produces one conflict-named file per variant.
func TestRunReadMergeConflict(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	c := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "p.txt"), []byte("alpha"))
	mustWriteFile(t, filepath.Join(b, "p.txt"), []byte("beta"))

	hashA, err := filesystem.HashFile(filepath.Join(a, "p.txt"))
	if err != nil {
		t.Fatalf("unable to hash source a: %s", err)
	}
	hashB, err := filesystem.HashFile(filepath.Join(b, "p.txt"))
	if err != nil {
		t.Fatalf("unable to hash source b: %s", err)
	}

	result, err := Run(Options{ReadPaths: []string{a, b}, WritePaths: []string{c}})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeConflict {
		t.Fatalf("result = %s, want %s", result, MergeConflict)
	}

	if _, err := os.Stat(filepath.Join(c, "p.txt")); !os.IsNotExist(err) {
		t.Error("unmerged conflicting sub-path should not produce a plain destination file")
	}

	alphaPath := filepath.Join(c, "p.__READ_MERGE_CONFLICT__"+hashA+".txt")
	betaPath := filepath.Join(c, "p.__READ_MERGE_CONFLICT__"+hashB+".txt")

	if got := readFile(t, alphaPath); string(got) != "alpha" {
		t.Errorf("%s = %q, want %q", alphaPath, got, "alpha")
	}
	if got := readFile(t, betaPath); string(got) != "beta" {
		t.Errorf("%s = %q, want %q", betaPath, got, "beta")
	}
}

// S4: write merge conflict: destination already has a file of different size.
func TestRunWriteMergeConflict(t *testing.T) {
	a := t.TempDir()
	c := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "q"), []byte("data"))
	mustWriteFile(t, filepath.Join(c, "q"), []byte("12345"))

	hashA, err := filesystem.HashFile(filepath.Join(a, "q"))
	if err != nil {
		t.Fatalf("unable to hash source: %s", err)
	}

	result, err := Run(Options{ReadPaths: []string{a}, WritePaths: []string{c}})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeConflict {
		t.Fatalf("result = %s, want %s", result, MergeConflict)
	}

	if got := readFile(t, filepath.Join(c, "q")); string(got) != "12345" {
		t.Errorf("existing destination file should be preserved, got %q", got)
	}

	conflictPath := filepath.Join(c, "q.__WRITE_MERGE_CONFLICT__"+hashA)
	if got := readFile(t, conflictPath); string(got) != "data" {
		t.Errorf("%s = %q, want %q", conflictPath, got, "data")
	}
}

// S5: a second identical run issues no further copy operations.
func TestRunIdempotentSecondRun(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	c := t.TempDir()
	d := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "p.bin"), []byte{0x00, 0x01})
	mustWriteFile(t, filepath.Join(b, "p.bin"), []byte{0x00, 0x01})

	if _, err := Run(Options{ReadPaths: []string{a, b}, WritePaths: []string{c, d}}); err != nil {
		t.Fatalf("first run returned an error: %s", err)
	}

	before, err := os.Stat(filepath.Join(c, "p.bin"))
	if err != nil {
		t.Fatalf("unable to stat destination after first run: %s", err)
	}

	var stats Stats
	result, err := Run(Options{ReadPaths: []string{a, b}, WritePaths: []string{c, d}, Stats: &stats})
	if err != nil {
		t.Fatalf("second run returned an error: %s", err)
	}
	if result != MergeOk {
		t.Fatalf("second run result = %s, want %s", result, MergeOk)
	}
	if stats.FilesCopied.Load() != 0 {
		t.Errorf("second run copied %d files, want 0", stats.FilesCopied.Load())
	}

	after, err := os.Stat(filepath.Join(c, "p.bin"))
	if err != nil {
		t.Fatalf("unable to stat destination after second run: %s", err)
	}
	if before.ModTime() != after.ModTime() {
		t.Error("destination file should not have been rewritten by the idempotent second run")
	}
}

// Excludes are honored even when present in only one source.
func TestRunExcludesSubPath(t *testing.T) {
	a := t.TempDir()
	c := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "keep.txt"), []byte("keep"))
	mustWriteFile(t, filepath.Join(a, "skip.tmp"), []byte("skip"))

	result, err := Run(Options{ReadPaths: []string{a}, WritePaths: []string{c}, Excludes: []string{"*.tmp"}})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeOk {
		t.Fatalf("result = %s, want %s", result, MergeOk)
	}

	if _, err := os.Stat(filepath.Join(c, "keep.txt")); err != nil {
		t.Errorf("keep.txt should have been copied: %s", err)
	}
	if _, err := os.Stat(filepath.Join(c, "skip.tmp")); !os.IsNotExist(err) {
		t.Error("skip.tmp matched an exclude pattern and should not have been copied")
	}
}

func TestRunStatsTracksBytesAndConflicts(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	c := t.TempDir()

	mustWriteFile(t, filepath.Join(a, "same.txt"), []byte("12345"))
	mustWriteFile(t, filepath.Join(a, "p.txt"), []byte("alpha"))
	mustWriteFile(t, filepath.Join(b, "p.txt"), []byte("beta"))

	var stats Stats
	result, err := Run(Options{ReadPaths: []string{a, b}, WritePaths: []string{c}, Stats: &stats})
	if err != nil {
		t.Fatalf("Run returned an error: %s", err)
	}
	if result != MergeConflict {
		t.Fatalf("result = %s, want %s", result, MergeConflict)
	}

	if stats.Conflicts.Load() != 1 {
		t.Errorf("conflicts = %d, want 1", stats.Conflicts.Load())
	}
	if stats.FilesCopied.Load() != 3 {
		t.Errorf("files copied = %d, want 3 (same.txt + 2 conflict variants)", stats.FilesCopied.Load())
	}
	if stats.BytesCopied.Load() != int64(len("12345")+len("alpha")+len("beta")) {
		t.Errorf("bytes copied = %d, want %d", stats.BytesCopied.Load(), len("12345")+len("alpha")+len("beta"))
	}
}
