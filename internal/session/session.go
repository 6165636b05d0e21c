package session

import "time"

const (
	idLayout   = "20060102_150405"
	dateLayout = "2006.01.02"
)

// Entry is one photo considered for a session, with its resolved capture time.
type Entry struct {
	Path       string
	CapturedAt time.Time
}

// Session is one marker-triggered batch of photos committed together.
type Session struct {
	ID          string
	SubjectID   string
	TriggerPath string
	TriggerTime time.Time
	Members     []Entry
}

// NewID derives the session identifier from the trigger's capture time.
// Identifiers are deterministic: re-detecting the same trigger photo yields
// the same session id.
func NewID(triggerTime time.Time) string {
	return triggerTime.Format(idLayout)
}

// DateFolder returns the dated destination folder name for a trigger time.
func DateFolder(triggerTime time.Time) string {
	return triggerTime.Format(dateLayout)
}
