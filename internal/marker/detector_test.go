package marker_test

import (
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/logging"
	"snapsort/internal/marker"
	"snapsort/internal/testsupport"
)

func TestDetectRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detector := marker.NewDetector(cfg, logging.NewNop())
	now := time.Now()

	cases := []struct {
		name    string
		file    string
		payload string
		want    string
	}{
		{"prefixed png", "trigger.png", "PATIENT_ID:A123", "A123"},
		{"prefixed jpeg", "trigger.jpg", "PATIENT_ID:B-42", "B-42"},
		{"bare payload", "bare.png", "C777", "C777"},
		{"surrounding whitespace", "spaced.png", "PATIENT_ID: D9 ", "D9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(cfg.Paths.WatchDir, tc.file)
			testsupport.WriteTriggerPhoto(t, path, tc.payload, now)

			got, ok := detector.Detect(path)
			if !ok {
				t.Fatal("expected marker to be detected")
			}
			if got != tc.want {
				t.Fatalf("subject id = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectOrdinaryPhoto(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detector := marker.NewDetector(cfg, logging.NewNop())

	path := filepath.Join(cfg.Paths.WatchDir, "plain.jpg")
	testsupport.WritePhoto(t, path, time.Now())

	if _, ok := detector.Detect(path); ok {
		t.Fatal("plain photo must not yield a marker")
	}
}

func TestDetectUnreadableFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detector := marker.NewDetector(cfg, logging.NewNop())

	if _, ok := detector.Detect(filepath.Join(cfg.Paths.WatchDir, "missing.jpg")); ok {
		t.Fatal("missing file must not yield a marker")
	}
}

func TestDetectEmptyPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detector := marker.NewDetector(cfg, logging.NewNop())

	path := filepath.Join(cfg.Paths.WatchDir, "empty.png")
	testsupport.WriteTriggerPhoto(t, path, "PATIENT_ID:   ", time.Now())

	if _, ok := detector.Detect(path); ok {
		t.Fatal("whitespace-only subject id must be rejected")
	}
}
