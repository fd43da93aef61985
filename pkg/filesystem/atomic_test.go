package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMkstempCreatesFileInBaseDir(t *testing.T) {
	dir := t.TempDir()

	f, path, err := Mkstemp(dir)
	if err != nil {
		t.Fatalf("Mkstemp returned an error: %s", err)
	}
	defer f.Close()

	if filepath.Dir(path) != dir {
		t.Errorf("temp file created in %q, want %q", filepath.Dir(path), dir)
	}
	if !strings.HasPrefix(filepath.Base(path), TemporaryNamePrefix) {
		t.Errorf("temp file name %q does not have prefix %q", filepath.Base(path), TemporaryNamePrefix)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("temp file does not exist: %s", err)
	}
}

func TestChmodSetsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("unable to write test file: %s", err)
	}

	if err := Chmod(path); err != nil {
		t.Fatalf("Chmod returned an error: %s", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unable to stat file: %s", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %o, want %o", info.Mode().Perm(), 0644)
	}
}

func TestAtomicRenameMovesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")

	if err := os.WriteFile(src, []byte("content"), 0644); err != nil {
		t.Fatalf("unable to write source file: %s", err)
	}

	if err := AtomicRename(src, dest); err != nil {
		t.Fatalf("AtomicRename returned an error: %s", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file should no longer exist after rename")
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("unable to read destination file: %s", err)
	}
	if string(content) != "content" {
		t.Errorf("destination content = %q, want %q", content, "content")
	}
}

func TestEnsureParentDirectoryCreatesMissingAncestors(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c", "file.txt")

	if err := EnsureParentDirectory(target); err != nil {
		t.Fatalf("EnsureParentDirectory returned an error: %s", err)
	}

	info, err := os.Stat(filepath.Dir(target))
	if err != nil {
		t.Fatalf("parent directory was not created: %s", err)
	}
	if !info.IsDir() {
		t.Error("parent path exists but is not a directory")
	}
}

func TestMkdirAllIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x", "y")

	if err := MkdirAll(target); err != nil {
		t.Fatalf("MkdirAll returned an error: %s", err)
	}
	if err := MkdirAll(target); err != nil {
		t.Errorf("second MkdirAll call should not error: %s", err)
	}
}
