// Package daemonrun wires configuration, logging, the journal, and the
// monitor into a running daemon process and blocks until shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"snapsort/internal/config"
	"snapsort/internal/daemon"
	"snapsort/internal/journal"
	"snapsort/internal/logging"
	"snapsort/internal/marker"
	"snapsort/internal/monitor"
	"snapsort/internal/services"
	"snapsort/internal/session"
)

// Options configures daemon process runtime behavior. Empty fields fall back
// to the configuration file.
type Options struct {
	LogLevel  string
	LogFormat string
}

// Run starts the snapsort daemon and blocks until a termination signal
// arrives or a failed session halts the monitor under stop-on-error.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	format := cfg.Logging.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "snapsort.log")},
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	runID := uuid.NewString()
	ctx := services.WithRunID(signalCtx, runID)
	logger = logging.WithContext(ctx, logger)

	store, err := journal.Open(cfg, runID)
	if err != nil {
		// The journal is history, not correctness; run without it.
		logger.Warn("session journal unavailable", logging.Error(err))
		store = nil
	}

	detector := marker.NewDetector(cfg, logger)
	collector := session.NewCollector(cfg, logger)
	var jrnl session.Journal
	if store != nil {
		jrnl = store
	}
	committer := session.NewCommitter(cfg, collector, jrnl, logger)
	mon := monitor.New(cfg, detector, committer, logger)

	d, err := daemon.New(cfg, store, mon, logger)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}

	fmt.Fprintf(os.Stdout, "snapsort watching %s (pid %d)\n", cfg.Paths.WatchDir, os.Getpid())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-d.Halted():
		logger.Warn("monitoring halted by stop-on-error policy")
	}

	return d.Close()
}
