package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchDir string `toml:"watch_dir"`
	LogDir   string `toml:"log_dir"`
}

// Session contains the session-formation policy.
type Session struct {
	SupportedFormats    []string `toml:"supported_formats"`
	MaxPhotosPerSession int      `toml:"max_photos_per_session"`
	MaxMinutesWindow    int      `toml:"max_minutes_window"`
	StartupScanMinutes  int      `toml:"startup_scan_minutes"`
	SettleDelaySeconds  int      `toml:"settle_delay_seconds"`
	StopOnError         bool     `toml:"stop_on_error"`
	SubjectPrefix       string   `toml:"subject_prefix"`
}

// Folders names the reserved subdirectories under the watch root.
type Folders struct {
	Backup string `toml:"backup"`
	Error  string `toml:"error"`
	Done   string `toml:"done"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for snapsort.
//
// Configuration sections by subsystem:
//   - Paths: watch root and log directory
//   - Session: window, limits, settle delay, stop-on-error policy
//   - Folders: reserved folder names for backup/error/done artifacts
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Session Session `toml:"session"`
	Folders Folders `toml:"folders"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/snapsort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("snapsort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories required for daemon operation. The
// watch root itself is never created here: a missing watch root is a startup
// error, not something to paper over.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// Window returns the session collection window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Session.MaxMinutesWindow) * time.Minute
}

// StartupScanWindow returns how far back the startup re-scan looks.
func (c *Config) StartupScanWindow() time.Duration {
	return time.Duration(c.Session.StartupScanMinutes) * time.Minute
}

// SettleDelay returns the pause applied before reading a newly created file.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Session.SettleDelaySeconds) * time.Second
}

// SupportedFormatSet returns the supported extensions as a lookup set.
// Keys are lowercase and include the leading dot.
func (c *Config) SupportedFormatSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Session.SupportedFormats))
	for _, ext := range c.Session.SupportedFormats {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

// BackupDir returns the backup root under the watch directory.
func (c *Config) BackupDir() string {
	return filepath.Join(c.Paths.WatchDir, c.Folders.Backup)
}

// ErrorDir returns the error-record directory under the watch directory.
func (c *Config) ErrorDir() string {
	return filepath.Join(c.Paths.WatchDir, c.Folders.Error)
}

// DoneDir returns the done-record directory under the watch directory.
func (c *Config) DoneDir() string {
	return filepath.Join(c.Paths.WatchDir, c.Folders.Done)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
