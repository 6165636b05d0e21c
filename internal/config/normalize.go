package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSession()
	c.normalizeFolders()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSession() {
	formats := make([]string, 0, len(c.Session.SupportedFormats))
	for _, ext := range c.Session.SupportedFormats {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		formats = append(formats, ext)
	}
	if len(formats) > 0 {
		c.Session.SupportedFormats = formats
	} else {
		c.Session.SupportedFormats = defaultSupportedFormats()
	}
	if strings.TrimSpace(c.Session.SubjectPrefix) == "" {
		c.Session.SubjectPrefix = defaultSubjectPrefix
	}
}

func (c *Config) normalizeFolders() {
	c.Folders.Backup = strings.TrimSpace(c.Folders.Backup)
	if c.Folders.Backup == "" {
		c.Folders.Backup = defaultBackupFolder
	}
	c.Folders.Error = strings.TrimSpace(c.Folders.Error)
	if c.Folders.Error == "" {
		c.Folders.Error = defaultErrorFolder
	}
	c.Folders.Done = strings.TrimSpace(c.Folders.Done)
	if c.Folders.Done == "" {
		c.Folders.Done = defaultDoneFolder
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
