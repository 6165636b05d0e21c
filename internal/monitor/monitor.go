// Package monitor drives session processing from two sources: a bounded
// startup re-scan of the watch root and a live create-event feed. Every
// candidate path funnels through one serialized detection and commit
// pipeline, so no two sessions ever race over the watch root.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"snapsort/internal/config"
	"snapsort/internal/logging"
	"snapsort/internal/media"
	"snapsort/internal/session"
)

type markerDetector interface {
	Detect(path string) (string, bool)
}

type sessionCommitter interface {
	Process(ctx context.Context, triggerPath, subjectID string) session.Outcome
}

// Monitor owns the watch loop and the run-lifetime stop flag.
type Monitor struct {
	cfg       *config.Config
	logger    *slog.Logger
	detector  markerDetector
	committer sessionCommitter

	events chan string

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// pipelineMu serializes the detection and commit pipeline between the
	// startup scan and live event handling.
	pipelineMu sync.Mutex

	stopRequested atomic.Bool
	halted        chan struct{}
	haltOnce      sync.Once
}

// New constructs a monitor over the configured watch root.
func New(cfg *config.Config, detector markerDetector, committer sessionCommitter, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "monitor"),
		detector:  detector,
		committer: committer,
		events:    make(chan string, 256),
		halted:    make(chan struct{}),
	}
}

// Start begins watching. A missing watch root is a startup error; nothing is
// created on the operator's behalf.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}

	info, err := os.Stat(m.cfg.Paths.WatchDir)
	if err != nil {
		return fmt.Errorf("watch root unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %q is not a directory", m.cfg.Paths.WatchDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(m.cfg.Paths.WatchDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %q: %w", m.cfg.Paths.WatchDir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true

	m.wg.Add(2)
	go m.forward(watcher)
	go m.consume()

	m.logger.Info("monitoring started",
		logging.String("watch_dir", m.cfg.Paths.WatchDir),
		logging.Duration("startup_scan_window", m.cfg.StartupScanWindow()),
		logging.Duration("settle_delay", m.cfg.SettleDelay()),
	)
	return nil
}

// Stop ends monitoring and waits for in-flight session processing to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("monitoring stopped")
}

// Halted is closed when a failed session requested a stop under the
// stop-on-error policy. The daemon treats it like a shutdown signal.
func (m *Monitor) Halted() <-chan struct{} {
	return m.halted
}

// forward turns raw watcher events into candidate paths. It never processes
// anything itself; the settle delay and the pipeline live on the consumer
// side so the notification source is not starved.
func (m *Monitor) forward(watcher *fsnotify.Watcher) {
	defer m.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			path := event.Name
			if !m.candidate(path) {
				continue
			}
			select {
			case m.events <- path:
			case <-m.ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

func (m *Monitor) candidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return media.IsEligible(path, m.cfg.SupportedFormatSet())
}

// consume runs the startup scan and then drains live events, one at a time.
func (m *Monitor) consume() {
	defer m.wg.Done()

	m.startupScan()

	for {
		if m.stopRequested.Load() {
			m.requestHalt()
			return
		}
		select {
		case <-m.ctx.Done():
			return
		case path := <-m.events:
			// New files may still be mid-write when the create event
			// fires; wait for the writer to finish flushing.
			if !m.settle() {
				return
			}
			m.handle(path)
		}
	}
}

// startupScan feeds files modified within the startup window through the
// pipeline, in enumeration order. The stop flag is checked once per file.
func (m *Monitor) startupScan() {
	window := m.cfg.StartupScanWindow()
	cutoff := time.Now().Add(-window)
	entries, err := os.ReadDir(m.cfg.Paths.WatchDir)
	if err != nil {
		m.logger.Warn("startup scan failed", logging.Error(err))
		return
	}

	m.logger.Info("startup scan",
		logging.Int("entries", len(entries)),
		logging.Duration("window", window),
	)
	for _, entry := range entries {
		if m.stopRequested.Load() || m.ctx.Err() != nil {
			return
		}
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(m.cfg.Paths.WatchDir, entry.Name())
		if !media.IsEligible(path, m.cfg.SupportedFormatSet()) {
			continue
		}
		if media.ResolveTimestamp(m.logger, path).Before(cutoff) {
			continue
		}
		m.handle(path)
	}
}

// handle runs one candidate through detection and, on a marker hit, the
// commit state machine. Serialized against every other handle call.
func (m *Monitor) handle(path string) {
	m.pipelineMu.Lock()
	defer m.pipelineMu.Unlock()

	// A preceding session may already have relocated this file.
	if _, err := os.Stat(path); err != nil {
		return
	}

	subjectID, ok := m.detector.Detect(path)
	if !ok {
		return
	}

	outcome := m.committer.Process(m.ctx, path, subjectID)
	if outcome.HaltRequested {
		m.logger.Warn("halt requested after failed session",
			logging.String(logging.FieldSessionID, outcome.Session.ID),
		)
		m.stopRequested.Store(true)
		m.requestHalt()
	}
}

// settle waits out the configured delay, returning false when monitoring is
// shutting down mid-wait.
func (m *Monitor) settle() bool {
	delay := m.cfg.SettleDelay()
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-m.ctx.Done():
		return false
	}
}

func (m *Monitor) requestHalt() {
	m.haltOnce.Do(func() { close(m.halted) })
}
