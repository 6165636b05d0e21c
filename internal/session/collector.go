package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/logging"
	"snapsort/internal/media"
	"snapsort/internal/services"
)

// Collector enumerates the watch root and time-filters candidate photos into
// an ordered session member list.
type Collector struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCollector constructs a collector bound to the configured watch root.
func NewCollector(cfg *config.Config, logger *slog.Logger) *Collector {
	return &Collector{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "collector"),
	}
}

// Collect returns the photos that qualify for a session triggered at
// triggerTime by triggerPath: direct children of the watch root that are
// regular eligible files, are not the trigger itself, and whose resolved
// capture time lies in [triggerTime - window, triggerTime] inclusive on both
// ends. Members are sorted ascending by capture time; ties keep directory
// enumeration order.
func (c *Collector) Collect(triggerTime time.Time, triggerPath string) ([]Entry, error) {
	cutoff := triggerTime.Add(-c.cfg.Window())
	formats := c.cfg.SupportedFormatSet()
	triggerResolved := resolvePath(triggerPath)

	entries, err := os.ReadDir(c.cfg.Paths.WatchDir)
	if err != nil {
		return nil, services.Wrap(services.ErrCollect, "collect", "scan watch root", "", err)
	}

	var members []Entry
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(c.cfg.Paths.WatchDir, entry.Name())
		if !media.IsEligible(path, formats) {
			continue
		}
		// The trigger photo is excluded by resolved path so a differing
		// textual reference to the same file still does not self-include.
		if resolvePath(path) == triggerResolved {
			continue
		}
		capturedAt := media.ResolveTimestamp(c.logger, path)
		if capturedAt.Before(cutoff) || capturedAt.After(triggerTime) {
			continue
		}
		members = append(members, Entry{Path: path, CapturedAt: capturedAt})
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CapturedAt.Before(members[j].CapturedAt)
	})

	c.logger.Debug("collected session members",
		logging.Int("count", len(members)),
		logging.Time("cutoff", cutoff),
		logging.Time("trigger_time", triggerTime),
	)
	return members, nil
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}
