package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/fileutil"
)

func TestCopyFilePreservingKeepsModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	if err := os.Chtimes(src, want, want); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := fileutil.CopyFilePreserving(src, dst); err != nil {
		t.Fatalf("CopyFilePreserving: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected dst contents: %q err=%v", data, err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if !info.ModTime().Equal(want) {
		t.Fatalf("mod time not preserved: got %v want %v", info.ModTime(), want)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("copy must not remove source: %v", err)
	}
}

func TestMoveFileCreatesParentAndRemovesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "sub", "dir", "dst.jpg")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("dst missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("src should be gone after move")
	}
}
