package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateFolders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		return errors.New("paths.watch_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSession() error {
	if err := ensurePositiveMap(map[string]int{
		"session.max_photos_per_session": c.Session.MaxPhotosPerSession,
		"session.max_minutes_window":     c.Session.MaxMinutesWindow,
		"session.startup_scan_minutes":   c.Session.StartupScanMinutes,
	}); err != nil {
		return err
	}
	if c.Session.SettleDelaySeconds < 0 {
		return errors.New("session.settle_delay_seconds must be >= 0")
	}
	if len(c.Session.SupportedFormats) == 0 {
		return errors.New("session.supported_formats must include at least one extension")
	}
	for _, ext := range c.Session.SupportedFormats {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("session.supported_formats entry %q must be a dotted extension", ext)
		}
	}
	return nil
}

// Reserved folders must carry a skip prefix so the scanner never collects the
// system's own artifacts back into a session.
func (c *Config) validateFolders() error {
	for key, name := range map[string]string{
		"folders.backup": c.Folders.Backup,
		"folders.error":  c.Folders.Error,
		"folders.done":   c.Folders.Done,
	} {
		if !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, ".") {
			return fmt.Errorf("%s must start with '_' or '.', got %q", key, name)
		}
	}
	if c.Folders.Backup == c.Folders.Error || c.Folders.Backup == c.Folders.Done || c.Folders.Error == c.Folders.Done {
		return errors.New("folders.backup, folders.error, and folders.done must be distinct")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
