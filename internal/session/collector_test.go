package session_test

import (
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/logging"
	"snapsort/internal/session"
	"snapsort/internal/testsupport"
)

func TestCollectWindowInclusiveBothEnds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Session.MaxMinutesWindow = 60
	collector := session.NewCollector(cfg, logging.NewNop())

	trigger := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	triggerPath := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "trigger.jpg"), trigger)

	inside := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "recent.jpg"), trigger.Add(-10*time.Minute))
	boundary := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "boundary.jpg"), trigger.Add(-60*time.Minute))
	exact := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "exact.jpg"), trigger)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "stale.jpg"), trigger.Add(-70*time.Minute))
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "future.jpg"), trigger.Add(time.Minute))

	members, err := collector.Collect(trigger, triggerPath)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := memberPaths(members)
	want := map[string]bool{boundary: true, inside: true, exact: true}
	if len(got) != len(want) {
		t.Fatalf("got members %v, want exactly %v", got, want)
	}
	for _, path := range got {
		if !want[path] {
			t.Fatalf("unexpected member %s", path)
		}
	}
}

func TestCollectOrderedByCaptureTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	collector := session.NewCollector(cfg, logging.NewNop())

	trigger := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	triggerPath := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "trigger.jpg"), trigger)

	// Written in an order unrelated to their capture times.
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "a.jpg"), trigger.Add(-5*time.Minute))
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "b.jpg"), trigger.Add(-30*time.Minute))
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "c.jpg"), trigger.Add(-15*time.Minute))

	members, err := collector.Collect(trigger, triggerPath)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}
	for i := 1; i < len(members); i++ {
		if members[i].CapturedAt.Before(members[i-1].CapturedAt) {
			t.Fatalf("members out of order: %v", memberPaths(members))
		}
	}
	if filepath.Base(members[0].Path) != "b.jpg" || filepath.Base(members[2].Path) != "a.jpg" {
		t.Fatalf("unexpected ordering: %v", memberPaths(members))
	}
}

func TestCollectExcludesTriggerViaDifferentPathSpelling(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	collector := session.NewCollector(cfg, logging.NewNop())

	trigger := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "trigger.jpg"), trigger)
	other := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "other.jpg"), trigger.Add(-time.Minute))

	// Same file, different textual representation.
	spelled := filepath.Join(cfg.Paths.WatchDir, "sub", "..", "trigger.jpg")
	members, err := collector.Collect(trigger, spelled)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(members) != 1 || members[0].Path != other {
		t.Fatalf("trigger not excluded, got %v", memberPaths(members))
	}
}

func TestCollectSkipsIneligibleEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	collector := session.NewCollector(cfg, logging.NewNop())

	trigger := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	triggerPath := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "trigger.jpg"), trigger)

	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "_reserved.jpg"), trigger)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, ".hidden.jpg"), trigger)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "nested", "deep.jpg"), trigger)
	keep := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "keep.jpg"), trigger)

	members, err := collector.Collect(trigger, triggerPath)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(members) != 1 || members[0].Path != keep {
		t.Fatalf("got %v, want only %s", memberPaths(members), keep)
	}
}

func memberPaths(members []session.Entry) []string {
	paths := make([]string, 0, len(members))
	for _, m := range members {
		paths = append(paths, m.Path)
	}
	return paths
}
