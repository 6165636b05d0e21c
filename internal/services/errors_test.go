package services_test

import (
	"errors"
	"strings"
	"testing"

	"snapsort/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrBackup, "backup", "copy member", "Failed to copy photo", base)
	if !errors.Is(err, services.ErrBackup) {
		t.Fatalf("expected wrapped error to match ErrBackup: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to retain cause: %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"backup", "copy member", "Failed to copy photo", "disk full"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "relocate", "", "", nil)
	if !errors.Is(err, services.ErrRelocate) {
		t.Fatalf("expected default marker ErrRelocate, got %v", err)
	}
}

func TestKindLabels(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{services.ErrLimitExceeded, "limit_exceeded"},
		{services.ErrCollect, "collect_failure"},
		{services.ErrBackup, "backup_failure"},
		{services.ErrRelocate, "relocate_failure"},
		{services.ErrRecord, "record_failure"},
		{services.ErrDetection, "detection_failure"},
		{services.ErrConfiguration, "configuration_failure"},
		{errors.New("plain"), "unknown_failure"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "step", "", "", nil)
		if tc.want == "unknown_failure" {
			err = tc.marker
		}
		if got := services.Kind(err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := t.Context()
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected empty context to carry no session id")
	}
	ctx = services.WithSessionID(ctx, "20250102_030405")
	ctx = services.WithSubjectID(ctx, "A1234")
	ctx = services.WithRunID(ctx, "run-1")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "20250102_030405" {
		t.Fatalf("unexpected session id: %q %v", id, ok)
	}
	if id, ok := services.SubjectIDFromContext(ctx); !ok || id != "A1234" {
		t.Fatalf("unexpected subject id: %q %v", id, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %q %v", id, ok)
	}
}
