package monitor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/logging"
	"snapsort/internal/marker"
	"snapsort/internal/monitor"
	"snapsort/internal/services"
	"snapsort/internal/session"
	"snapsort/internal/testsupport"
)

func newMonitor(cfg *config.Config) *monitor.Monitor {
	logger := logging.NewNop()
	detector := marker.NewDetector(cfg, logger)
	collector := session.NewCollector(cfg, logger)
	committer := session.NewCommitter(cfg, collector, nil, logger)
	return monitor.New(cfg, detector, committer, logger)
}

func TestStartupScanCommitsRecentSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	now := time.Now()
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "shot.jpg"), now.Add(-time.Minute))
	testsupport.WriteTriggerPhoto(t, filepath.Join(cfg.Paths.WatchDir, "trigger.png"), "PATIENT_ID:A123", now)

	m := newMonitor(cfg)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	destDir := filepath.Join(cfg.Paths.WatchDir, "A123", session.DateFolder(now))
	waitFor(t, 10*time.Second, func() bool {
		entries, err := os.ReadDir(destDir)
		return err == nil && len(entries) == 2
	})
}

func TestStartupScanSkipsFilesOutsideWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Session.StartupScanMinutes = 30

	stale := time.Now().Add(-2 * time.Hour)
	testsupport.WriteTriggerPhoto(t, filepath.Join(cfg.Paths.WatchDir, "old_trigger.png"), "PATIENT_ID:Z9", stale)

	m := newMonitor(cfg)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(500 * time.Millisecond)
	m.Stop()

	if _, err := os.Stat(filepath.Join(cfg.Paths.WatchDir, "Z9")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("stale trigger outside the startup window must not be processed")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.WatchDir, "old_trigger.png")); err != nil {
		t.Fatalf("stale trigger should remain in place: %v", err)
	}
}

func TestLiveEventCommitsSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	m := newMonitor(cfg)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	// Stage files outside the watch root and rename them in so the create
	// event always sees complete content.
	now := time.Now()
	staged := testsupport.WritePhoto(t, filepath.Join(cfg.Paths.LogDir, "shot.jpg"), now.Add(-time.Minute))
	moveIn(t, staged, filepath.Join(cfg.Paths.WatchDir, "shot.jpg"))

	stagedTrigger := testsupport.WriteTriggerPhoto(t, filepath.Join(cfg.Paths.LogDir, "trigger.png"), "PATIENT_ID:B7", now)
	moveIn(t, stagedTrigger, filepath.Join(cfg.Paths.WatchDir, "trigger.png"))

	destDir := filepath.Join(cfg.Paths.WatchDir, "B7", session.DateFolder(now))
	waitFor(t, 10*time.Second, func() bool {
		entries, err := os.ReadDir(destDir)
		return err == nil && len(entries) == 2
	})
}

func TestMissingWatchRootIsStartupError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.WatchDir = filepath.Join(cfg.Paths.WatchDir, "does-not-exist")

	m := newMonitor(cfg)
	if err := m.Start(t.Context()); err == nil {
		m.Stop()
		t.Fatal("missing watch root must fail startup")
	}
}

type haltDetector struct{}

func (haltDetector) Detect(string) (string, bool) { return "X1", true }

type haltCommitter struct{}

func (haltCommitter) Process(_ context.Context, triggerPath, subjectID string) session.Outcome {
	return session.Outcome{
		Session:       &session.Session{ID: "20250601_120000", SubjectID: subjectID, TriggerPath: triggerPath},
		Err:           services.Wrap(services.ErrBackup, "backup", "copy photo", "", os.ErrPermission),
		HaltRequested: true,
	}
}

func TestHaltRequestedClosesHaltedChannel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.WatchDir, "shot.jpg"), time.Now())

	m := monitor.New(cfg, haltDetector{}, haltCommitter{}, logging.NewNop())
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	select {
	case <-m.Halted():
	case <-time.After(10 * time.Second):
		t.Fatal("halt channel never closed")
	}
}

func moveIn(t *testing.T, src, dst string) {
	t.Helper()
	if err := os.Rename(src, dst); err != nil {
		t.Fatalf("rename %s: %v", src, err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
