package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureParentDirCreatesNestedDirectories(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out.vtt")
	if err := EnsureParentDir(target); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatalf("expected directory at %s", filepath.Dir(target))
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsRegularFile(file) {
		t.Fatal("expected regular file")
	}
	if IsRegularFile(dir) {
		t.Fatal("directory must not count as a regular file")
	}
	if IsRegularFile(filepath.Join(dir, "missing.wav")) {
		t.Fatal("missing path must not count as a regular file")
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	sum, size, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if sum != want {
		t.Fatalf("sha256 = %s, want %s", sum, want)
	}
	if size != 11 {
		t.Fatalf("size = %d, want 11", size)
	}
	if _, _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
