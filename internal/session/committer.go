package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/fileutil"
	"snapsort/internal/logging"
	"snapsort/internal/media"
	"snapsort/internal/services"
)

// Session attempt states as persisted to the journal.
const (
	StatusCollecting = "collecting"
	StatusBackingUp  = "backing_up"
	StatusRelocating = "relocating"
	StatusDone       = "done"
	StatusError      = "error"
)

// Journal persists session attempt history. Implementations are consulted
// sequentially from the single commit pipeline; write failures must be
// returned, never panicked, and are logged by the committer rather than
// failing the session.
type Journal interface {
	Begin(ctx context.Context, sessionID, subjectID, triggerPath string) error
	SetStatus(ctx context.Context, sessionID, status string, memberCount int) error
	MarkDone(ctx context.Context, sessionID string, movedCount int) error
	MarkError(ctx context.Context, sessionID, contextLabel, kind, message string) error
}

// Outcome reports how one session attempt ended.
type Outcome struct {
	Session    *Session
	MovedCount int
	Err        error
	// HaltRequested is set when the attempt failed and the stop-on-error
	// policy is active. The monitor stops pulling work after the current
	// batch; it does not abandon in-flight processing.
	HaltRequested bool
}

// Committer owns the session state machine: limit check, backup, relocation
// and record writing. One Process call mutates the watch root at a time.
type Committer struct {
	cfg       *config.Config
	collector *Collector
	journal   Journal
	logger    *slog.Logger
}

// NewCommitter constructs a committer. journal may be nil, in which case no
// attempt history is kept.
func NewCommitter(cfg *config.Config, collector *Collector, journal Journal, logger *slog.Logger) *Committer {
	return &Committer{
		cfg:       cfg,
		collector: collector,
		journal:   journal,
		logger:    logging.NewComponentLogger(logger, "committer"),
	}
}

// Process runs the full state machine for one detected trigger. Failures in
// any state are caught here, converted into an error record plus a log line,
// and reported through the outcome; they never propagate as an error return.
func (c *Committer) Process(ctx context.Context, triggerPath, subjectID string) Outcome {
	triggerTime := media.ResolveTimestamp(c.logger, triggerPath)
	s := &Session{
		ID:          NewID(triggerTime),
		SubjectID:   subjectID,
		TriggerPath: triggerPath,
		TriggerTime: triggerTime,
	}
	ctx = services.WithSessionID(ctx, s.ID)
	ctx = services.WithSubjectID(ctx, subjectID)
	logger := logging.WithContext(ctx, c.logger)

	logger.Info("session triggered",
		logging.String("trigger_path", triggerPath),
		logging.Time("trigger_time", triggerTime),
	)
	c.journalBegin(ctx, s)
	c.journalStatus(ctx, s, StatusCollecting, 0)

	members, err := c.collector.Collect(triggerTime, triggerPath)
	if err != nil {
		return c.fail(ctx, logger, s, "collecting photos", err)
	}
	s.Members = members
	c.journalStatus(ctx, s, StatusCollecting, len(members))

	// Limit violations abort before any file mutation.
	if limit := c.cfg.Session.MaxPhotosPerSession; len(members) > limit {
		err := services.Wrap(services.ErrLimitExceeded, "limit-check", "",
			fmt.Sprintf("%d photos exceed limit of %d", len(members), limit), nil)
		return c.fail(ctx, logger, s, "max photos exceeded", err)
	}

	c.journalStatus(ctx, s, StatusBackingUp, len(members))
	if err := c.backup(s); err != nil {
		return c.fail(ctx, logger, s, "backing up photos", err)
	}

	c.journalStatus(ctx, s, StatusRelocating, len(members))
	moved, err := c.relocate(s)
	if err != nil {
		return c.fail(ctx, logger, s, "relocating photos", err)
	}

	if err := writeDoneRecord(c.cfg, s, moved, time.Now()); err != nil {
		return c.fail(ctx, logger, s, "writing completion record", err)
	}
	c.journalDone(ctx, s, moved)
	logger.Info("session complete",
		logging.Int("members", len(members)),
		logging.Int("moved", moved),
	)
	return Outcome{Session: s, MovedCount: moved}
}

// backup copies every member plus the trigger into the session's backup
// folder before anything destructive happens. No rollback on failure; a
// partial backup folder is acceptable collateral cleaned out of band.
func (c *Committer) backup(s *Session) error {
	dir := filepath.Join(c.cfg.BackupDir(), s.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrBackup, "backup", "create backup folder", dir, err)
	}
	for i, member := range s.Members {
		dst := filepath.Join(dir, fmt.Sprintf("%03d%s", i+1, filepath.Ext(member.Path)))
		if err := fileutil.CopyFilePreserving(member.Path, dst); err != nil {
			return services.Wrap(services.ErrBackup, "backup", "copy photo", member.Path, err)
		}
	}
	dst := filepath.Join(dir, triggerName(s.SubjectID, filepath.Ext(s.TriggerPath)))
	if err := fileutil.CopyFilePreserving(s.TriggerPath, dst); err != nil {
		return services.Wrap(services.ErrBackup, "backup", "copy trigger photo", s.TriggerPath, err)
	}
	return nil
}

// relocate moves members into the dated subject folder using sequential names
// that continue above the folder's current maximum numeric stem, then moves
// the trigger last under its QR name. Mid-loop failure leaves already-moved
// files in place; the backup folder is the recovery artifact.
func (c *Committer) relocate(s *Session) (int, error) {
	destDir := filepath.Join(c.cfg.Paths.WatchDir, s.SubjectID, DateFolder(s.TriggerTime))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, services.Wrap(services.ErrRelocate, "relocate", "create destination folder", destDir, err)
	}
	seq, err := nextSequence(destDir)
	if err != nil {
		return 0, services.Wrap(services.ErrRelocate, "relocate", "scan destination folder", destDir, err)
	}

	moved := 0
	for _, member := range s.Members {
		dst := filepath.Join(destDir, fmt.Sprintf("%03d%s", seq, filepath.Ext(member.Path)))
		if err := fileutil.MoveFile(member.Path, dst); err != nil {
			return moved, services.Wrap(services.ErrRelocate, "relocate", "move photo", member.Path, err)
		}
		seq++
		moved++
	}

	dst := vacantTriggerPath(destDir, s.SubjectID, filepath.Ext(s.TriggerPath))
	if err := fileutil.MoveFile(s.TriggerPath, dst); err != nil {
		return moved, services.Wrap(services.ErrRelocate, "relocate", "move trigger photo", s.TriggerPath, err)
	}
	moved++
	return moved, nil
}

func (c *Committer) fail(ctx context.Context, logger *slog.Logger, s *Session, contextLabel string, cause error) Outcome {
	logger.Error("session failed",
		logging.String("context", contextLabel),
		logging.String("error_kind", services.Kind(cause)),
		logging.Error(cause),
	)
	if err := writeErrorRecord(c.cfg, s, contextLabel, cause); err != nil {
		logger.Error("could not write error record", logging.Error(err))
	}
	c.journalError(ctx, s, contextLabel, cause)
	return Outcome{
		Session:       s,
		Err:           cause,
		HaltRequested: c.cfg.Session.StopOnError,
	}
}

func (c *Committer) journalBegin(ctx context.Context, s *Session) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Begin(ctx, s.ID, s.SubjectID, s.TriggerPath); err != nil {
		c.logger.Warn("journal begin failed", logging.String(logging.FieldSessionID, s.ID), logging.Error(err))
	}
}

func (c *Committer) journalStatus(ctx context.Context, s *Session, status string, memberCount int) {
	if c.journal == nil {
		return
	}
	if err := c.journal.SetStatus(ctx, s.ID, status, memberCount); err != nil {
		c.logger.Warn("journal update failed", logging.String(logging.FieldSessionID, s.ID), logging.Error(err))
	}
}

func (c *Committer) journalDone(ctx context.Context, s *Session, movedCount int) {
	if c.journal == nil {
		return
	}
	if err := c.journal.MarkDone(ctx, s.ID, movedCount); err != nil {
		c.logger.Warn("journal completion failed", logging.String(logging.FieldSessionID, s.ID), logging.Error(err))
	}
}

func (c *Committer) journalError(ctx context.Context, s *Session, contextLabel string, cause error) {
	if c.journal == nil {
		return
	}
	if err := c.journal.MarkError(ctx, s.ID, contextLabel, services.Kind(cause), cause.Error()); err != nil {
		c.logger.Warn("journal error update failed", logging.String(logging.FieldSessionID, s.ID), logging.Error(err))
	}
}

func triggerName(subjectID, ext string) string {
	return "QR_" + subjectID + ext
}

// nextSequence returns one past the maximum purely-numeric filename stem in
// dir, or 1 when the folder is new or holds no numbered files.
func nextSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, nil
		}
		return 0, err
	}
	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if n, ok := numericStem(stem); ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func numericStem(stem string) (int, bool) {
	if stem == "" {
		return 0, false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	return n, true
}

// vacantTriggerPath probes QR_{subject}{ext}, QR_{subject}_1{ext}, ... upward
// without bound until a free name is found. Best effort only: nothing guards
// against writers outside this process racing for the same name.
func vacantTriggerPath(dir, subjectID, ext string) string {
	base := "QR_" + subjectID
	candidate := filepath.Join(dir, base+ext)
	for n := 1; ; n++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
}
