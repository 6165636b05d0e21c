// Package journal keeps a queryable history of session attempts in SQLite.
//
// The plain-text done and error records under the watch root remain the
// operator-facing artifacts of record; the journal exists so the sessions
// command can answer "what has this daemon done lately" without crawling
// the filesystem. Journal writes are best effort: callers log failures and
// carry on.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"snapsort/internal/config"
)

// Store manages session attempt persistence backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

const schema = `
CREATE TABLE IF NOT EXISTS session_attempts (
    session_id    TEXT PRIMARY KEY,
    subject_id    TEXT NOT NULL,
    run_id        TEXT NOT NULL,
    trigger_path  TEXT NOT NULL,
    status        TEXT NOT NULL,
    member_count  INTEGER NOT NULL DEFAULT 0,
    moved_count   INTEGER NOT NULL DEFAULT 0,
    error_context TEXT,
    error_kind    TEXT,
    error_message TEXT,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_attempts_status ON session_attempts(status);
`

// Open initializes or connects to the journal database under the log
// directory and bootstraps the schema.
func Open(cfg *config.Config, runID string) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db, path: dbPath, runID: runID}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the journal database file.
func (s *Store) Path() string {
	return s.path
}

// Begin records the start of a session attempt. Session ids are derived from
// the trigger's capture time, so a re-detected trigger updates its previous
// row rather than duplicating it.
func (s *Store) Begin(ctx context.Context, sessionID, subjectID, triggerPath string) error {
	now := timestamp()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO session_attempts (
            session_id, subject_id, run_id, trigger_path, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, 'collecting', ?, ?)
        ON CONFLICT(session_id) DO UPDATE SET
            subject_id = excluded.subject_id,
            run_id = excluded.run_id,
            trigger_path = excluded.trigger_path,
            status = 'collecting',
            member_count = 0,
            moved_count = 0,
            error_context = NULL,
            error_kind = NULL,
            error_message = NULL,
            updated_at = excluded.updated_at`,
		sessionID, subjectID, s.runID, triggerPath, now, now,
	)
	if err != nil {
		return fmt.Errorf("begin attempt: %w", err)
	}
	return nil
}

// SetStatus advances an attempt through the state machine.
func (s *Store) SetStatus(ctx context.Context, sessionID, status string, memberCount int) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE session_attempts
        SET status = ?, member_count = ?, updated_at = ?
        WHERE session_id = ?`,
		status, memberCount, timestamp(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// MarkDone records a successful outcome.
func (s *Store) MarkDone(ctx context.Context, sessionID string, movedCount int) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE session_attempts
        SET status = 'done', moved_count = ?, updated_at = ?
        WHERE session_id = ?`,
		movedCount, timestamp(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// MarkError records a failed outcome with its classification.
func (s *Store) MarkError(ctx context.Context, sessionID, contextLabel, kind, message string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE session_attempts
        SET status = 'error', error_context = ?, error_kind = ?, error_message = ?, updated_at = ?
        WHERE session_id = ?`,
		contextLabel, kind, message, timestamp(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	return nil
}

// Attempt is one journaled session attempt.
type Attempt struct {
	SessionID    string
	SubjectID    string
	RunID        string
	TriggerPath  string
	Status       string
	MemberCount  int
	MovedCount   int
	ErrorContext string
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// List returns attempts newest first, up to limit (0 means no limit).
func (s *Store) List(ctx context.Context, limit int) ([]Attempt, error) {
	query := `
        SELECT session_id, subject_id, run_id, trigger_path, status,
               member_count, moved_count,
               COALESCE(error_context, ''), COALESCE(error_kind, ''), COALESCE(error_message, ''),
               created_at, updated_at
        FROM session_attempts
        ORDER BY created_at DESC, session_id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var createdAt, updatedAt string
		if err := rows.Scan(
			&a.SessionID, &a.SubjectID, &a.RunID, &a.TriggerPath, &a.Status,
			&a.MemberCount, &a.MovedCount,
			&a.ErrorContext, &a.ErrorKind, &a.ErrorMessage,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.CreatedAt = parseTimestamp(createdAt)
		a.UpdatedAt = parseTimestamp(updatedAt)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// Stats summarizes journaled attempts by outcome.
type Stats struct {
	Total    int
	Done     int
	Failed   int
	InFlight int
}

// Stats returns attempt counts grouped by terminal outcome.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM session_attempts GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch status {
		case "done":
			stats.Done += count
		case "error":
			stats.Failed += count
		default:
			stats.InFlight += count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
