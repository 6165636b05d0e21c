package media_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/logging"
	"snapsort/internal/media"
)

func formatSet() map[string]struct{} {
	return map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}}
}

func TestIsEligible(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/watch/photo.jpg", true},
		{"/watch/photo.JPG", true},
		{"/watch/photo.jpeg", true},
		{"/watch/nested/photo.png", true},
		{"/watch/notes.txt", false},
		{"/watch/photo", false},
		{"/watch/_backup.jpg", false},
		{"/watch/.hidden.jpg", false},
	}
	for _, tc := range cases {
		if got := media.IsEligible(tc.path, formatSet()); got != tc.want {
			t.Errorf("IsEligible(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestResolveTimestampFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")
	if err := os.WriteFile(path, []byte("not a real photo"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	if err := os.Chtimes(path, want, want); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got := media.ResolveTimestamp(logging.NewNop(), path)
	if !got.Equal(want) {
		t.Fatalf("ResolveTimestamp = %v, want mod time %v", got, want)
	}
}

func TestResolveTimestampMissingFile(t *testing.T) {
	before := time.Now()
	got := media.ResolveTimestamp(logging.NewNop(), filepath.Join(t.TempDir(), "missing.jpg"))
	if got.Before(before.Add(-time.Second)) {
		t.Fatalf("missing file should resolve to roughly now, got %v", got)
	}
}
