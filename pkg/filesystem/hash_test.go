package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFileMatchesSHA256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("unable to write test file: %s", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile returned an error: %s", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashFile = %q, want %q", got, want)
	}
}

func TestHashFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("unable to write test file: %s", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile returned an error: %s", err)
	}

	sum := sha256.Sum256(nil)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashFile = %q, want %q", got, want)
	}
}

func TestHashFileLargerThanBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "large.bin")
	content := make([]byte, hashBufferSize*3+17)
	for i := range content {
		content[i] = byte(i)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("unable to write test file: %s", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile returned an error: %s", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashFile = %q, want %q", got, want)
	}
}

func TestHashFileMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := HashFile(filepath.Join(dir, "nonexistent")); err == nil {
		t.Error("expected an error hashing a nonexistent file")
	}
}
