// Package journal keeps the submission journal in SQLite: one row per job
// handed to the cluster, shared by all runs of a user.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteJournal is a ports.JobJournal backed by a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// DefaultPath returns $XDG_DATA_HOME/actor/journal.db, falling back to
// ~/.local/share.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "actor", "journal.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "actor", "journal.db"), nil
}

// Open opens or creates the journal at path.
func Open(path string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return newJournal(db)
}

// OpenMemory opens a private in-memory journal.
func OpenMemory() (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	return newJournal(db)
}

func newJournal(db *sql.DB) (*SQLiteJournal, error) {
	// Concurrent runs share the file; one connection per process and a busy
	// timeout keep writers from failing on lock contention.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure journal: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// Record appends a job.
func (j *SQLiteJournal) Record(ctx context.Context, rec ports.JobRecord) error {
	args, err := json.Marshal(nonNil(rec.Args))
	if err != nil {
		return err
	}
	after, err := json.Marshal(nonNil(rec.After))
	if err != nil {
		return err
	}
	submitted := rec.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO jobs (job_id, run_id, step, script, args, after_ids, done, user, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.RunID, rec.Step, rec.Script, string(args), string(after), rec.Done, rec.User,
		submitted.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record job %s: %w", rec.JobID, err)
	}
	return nil
}

// List returns the jobs of runID in submission order, or all jobs when
// runID is empty.
func (j *SQLiteJournal) List(ctx context.Context, runID string) ([]ports.JobRecord, error) {
	query := `SELECT job_id, run_id, step, script, args, after_ids, done, user, submitted_at FROM jobs`
	var params []interface{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		params = append(params, runID)
	}
	query += ` ORDER BY id`

	rows, err := j.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ports.JobRecord
	for rows.Next() {
		var rec ports.JobRecord
		var args, after, submitted string
		if err := rows.Scan(&rec.JobID, &rec.RunID, &rec.Step, &rec.Script, &args, &after, &rec.Done, &rec.User, &submitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
			return nil, fmt.Errorf("job %s args: %w", rec.JobID, err)
		}
		if err := json.Unmarshal([]byte(after), &rec.After); err != nil {
			return nil, fmt.Errorf("job %s after: %w", rec.JobID, err)
		}
		if rec.SubmittedAt, err = time.Parse(time.RFC3339Nano, submitted); err != nil {
			return nil, fmt.Errorf("job %s time: %w", rec.JobID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ ports.JobJournal = (*SQLiteJournal)(nil)
