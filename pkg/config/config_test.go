package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "dit.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write manifest: %s", err)
	}
	return path
}

func TestLoadParsesReadWriteExclude(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
read:
  - /a
  - /b
write:
  - /c
exclude:
  - "*.tmp"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %s", err)
	}

	if diff := cmp.Diff([]string{"/a", "/b"}, m.Read); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/c"}, m.Write); diff != "" {
		t.Errorf("Write mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"*.tmp"}, m.Exclude); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing manifest file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "read: [unterminated")

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestManifestReadWritePathsNormalizesTrailingSlashes(t *testing.T) {
	m := Manifest{Read: []string{"/a/"}, Write: []string{"/c/"}}

	rw, err := m.ReadWritePaths()
	if err != nil {
		t.Fatalf("ReadWritePaths returned an error: %s", err)
	}
	if rw.ReadPaths[0] != "/a" {
		t.Errorf("ReadPaths[0] = %q, want %q", rw.ReadPaths[0], "/a")
	}
	if rw.WritePaths[0] != "/c" {
		t.Errorf("WritePaths[0] = %q, want %q", rw.WritePaths[0], "/c")
	}
}

func TestManifestReadWritePathsRejectsRootPath(t *testing.T) {
	m := Manifest{Read: []string{"/"}, Write: []string{"/c"}}
	if _, err := m.ReadWritePaths(); err == nil {
		t.Error("expected an error for a manifest read path of '/'")
	}
}
