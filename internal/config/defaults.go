package config

const (
	defaultWatchDir            = "~/snapsort/incoming"
	defaultLogDir              = "~/.local/share/snapsort/logs"
	defaultMaxPhotosPerSession = 200
	defaultMaxMinutesWindow    = 60
	defaultStartupScanMinutes  = 30
	defaultSettleDelaySeconds  = 2
	defaultSubjectPrefix       = "PATIENT_ID:"
	defaultBackupFolder        = "_backup"
	defaultErrorFolder         = "_error"
	defaultDoneFolder          = "_done"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultSupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir: defaultWatchDir,
			LogDir:   defaultLogDir,
		},
		Session: Session{
			SupportedFormats:    defaultSupportedFormats(),
			MaxPhotosPerSession: defaultMaxPhotosPerSession,
			MaxMinutesWindow:    defaultMaxMinutesWindow,
			StartupScanMinutes:  defaultStartupScanMinutes,
			SettleDelaySeconds:  defaultSettleDelaySeconds,
			SubjectPrefix:       defaultSubjectPrefix,
		},
		Folders: Folders{
			Backup: defaultBackupFolder,
			Error:  defaultErrorFolder,
			Done:   defaultDoneFolder,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
