package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/gofrs/flock"

	"snapsort/internal/config"
	"snapsort/internal/journal"
	"snapsort/internal/logging"
	"snapsort/internal/monitor"
)

// Daemon coordinates the folder monitor and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *journal.Store
	monitor *monitor.Monitor

	lockPath string
	lock     *flock.Flock
	pidPath  string

	running atomic.Bool
}

// New constructs a daemon with initialized dependencies. store may be nil
// when the journal could not be opened; everything else is required.
func New(cfg *config.Config, store *journal.Store, mon *monitor.Monitor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || mon == nil || logger == nil {
		return nil, errors.New("daemon requires config, monitor, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "snapsortd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		monitor:  mon,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		pidPath:  filepath.Join(cfg.Paths.LogDir, "snapsortd.pid"),
	}, nil
}

// Start acquires the instance lock, writes the pid file, and launches the
// monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another snapsort daemon instance is already running")
	}

	if err := os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		d.logger.Warn("could not write pid file",
			logging.String("path", d.pidPath),
			logging.Error(err),
		)
	}

	if err := d.monitor.Start(ctx); err != nil {
		_ = os.Remove(d.pidPath)
		_ = d.lock.Unlock()
		return fmt.Errorf("start monitor: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("snapsort daemon started",
		logging.String("lock", d.lockPath),
		logging.String("watch_dir", d.cfg.Paths.WatchDir),
	)
	return nil
}

// Stop stops the monitor and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.monitor.Stop()
	if err := os.Remove(d.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("could not remove pid file", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("could not release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("snapsort daemon stopped")
}

// Close stops the daemon and releases the journal.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Halted reports the monitor's stop-on-error signal.
func (d *Daemon) Halted() <-chan struct{} {
	return d.monitor.Halted()
}
