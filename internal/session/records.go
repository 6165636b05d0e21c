package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/services"
)

const recordTimeLayout = "2006-01-02 15:04:05"

// writeDoneRecord deposits the completion record for a successful session.
// Records are write-once: created with the session outcome, never mutated.
func writeDoneRecord(cfg *config.Config, s *Session, movedCount int, completedAt time.Time) error {
	name := fmt.Sprintf("done_%s_%s.txt", s.ID, s.SubjectID)
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s complete\n", s.ID)
	fmt.Fprintf(&b, "Subject: %s\n", s.SubjectID)
	fmt.Fprintf(&b, "Files moved: %d\n", movedCount)
	fmt.Fprintf(&b, "Completed: %s\n", completedAt.Format(recordTimeLayout))
	return writeRecord(cfg.DoneDir(), name, b.String())
}

// writeErrorRecord deposits the failure report for a session attempt. It is
// written independent of log configuration so operators can triage from the
// watch root alone.
func writeErrorRecord(cfg *config.Config, s *Session, contextLabel string, cause error) error {
	name := fmt.Sprintf("error_%s.txt", s.ID)
	var b strings.Builder
	b.WriteString("Error Report\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format(recordTimeLayout))
	fmt.Fprintf(&b, "Session ID: %s\n", s.ID)
	fmt.Fprintf(&b, "Subject ID: %s\n", s.SubjectID)
	fmt.Fprintf(&b, "Context: %s\n", contextLabel)
	fmt.Fprintf(&b, "Error Kind: %s\n", services.Kind(cause))
	fmt.Fprintf(&b, "Error Message: %v\n", cause)
	return writeRecord(cfg.ErrorDir(), name, b.String())
}

func writeRecord(dir, name, contents string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrRecord, "record", "create record directory", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return services.Wrap(services.ErrRecord, "record", "write record", path, err)
	}
	return nil
}
