// Package chronicle persists run journals to a local SQLite file.
//
// A run row is opened at voyage start and closed at the end; journal
// entries stream in between, numbered by a monotonic sequence so the
// stored order always matches the order the actor lived it. The chronicle
// is optional: a nil Recorder swallows every call, so the engine runs
// identically with or without a database behind it.
package chronicle

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/odyssee/internal/actor"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	seed INTEGER NOT NULL,
	actor TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at INTEGER
);

CREATE TABLE IF NOT EXISTS run_entries (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Store persists runs and their journal entries in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the SQLite chronicle and creates its schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("chronicle path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create chronicle schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// BeginRun inserts a run row and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, seed int64, actorName string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("chronicle is not configured")
	}
	actorName = strings.TrimSpace(actorName)
	if actorName == "" {
		return 0, fmt.Errorf("actor name is required")
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (seed, actor, started_at) VALUES (?, ?, ?)`,
		seed,
		actorName,
		toMillis(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("begin run id: %w", err)
	}
	return id, nil
}

// AppendEntries stores journal entries under the run, numbering them from
// startSeq, and returns the next free sequence number. The batch commits
// atomically.
func (s *Store) AppendEntries(ctx context.Context, runID int64, startSeq int, entries []actor.Entry) (int, error) {
	if err := ctx.Err(); err != nil {
		return startSeq, err
	}
	if s == nil || s.sqlDB == nil {
		return startSeq, fmt.Errorf("chronicle is not configured")
	}
	if len(entries) == 0 {
		return startSeq, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return startSeq, fmt.Errorf("append entries: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recordedAt := toMillis(s.now())
	seq := startSeq
	for _, entry := range entries {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_entries (run_id, seq, level, message, recorded_at) VALUES (?, ?, ?, ?, ?)`,
			runID,
			seq,
			string(entry.Level),
			entry.Message,
			recordedAt,
		); err != nil {
			return startSeq, fmt.Errorf("append entry %d: %w", seq, err)
		}
		seq++
	}

	if err := tx.Commit(); err != nil {
		return startSeq, fmt.Errorf("append entries: %w", err)
	}
	return seq, nil
}

// EndRun stamps the run's end time.
func (s *Store) EndRun(ctx context.Context, runID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("chronicle is not configured")
	}

	if _, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ?`,
		toMillis(s.now()),
		runID,
	); err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	return nil
}

// Run is a stored run row.
type Run struct {
	ID        int64
	Seed      int64
	Actor     string
	StartedAt time.Time
	EndedAt   time.Time
	Ended     bool
}

// Run returns one run row by identifier.
func (s *Store) Run(ctx context.Context, runID int64) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("chronicle is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seed, actor, started_at, ended_at FROM runs WHERE id = ?`,
		runID,
	)

	var run Run
	var startedAt int64
	var endedAt sql.NullInt64
	if err := row.Scan(&run.ID, &run.Seed, &run.Actor, &startedAt, &endedAt); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	run.StartedAt = fromMillis(startedAt)
	if endedAt.Valid {
		run.EndedAt = fromMillis(endedAt.Int64)
		run.Ended = true
	}
	return run, nil
}

// RunEntry is one stored journal line.
type RunEntry struct {
	Seq        int
	Level      actor.Level
	Message    string
	RecordedAt time.Time
}

// Entries returns the run's journal lines in sequence order.
func (s *Store) Entries(ctx context.Context, runID int64) ([]RunEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("chronicle is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, level, message, recorded_at FROM run_entries WHERE run_id = ? ORDER BY seq ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var entry RunEntry
		var level string
		var recordedAt int64
		if err := rows.Scan(&entry.Seq, &level, &entry.Message, &recordedAt); err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entry.Level = actor.Level(level)
		entry.RecordedAt = fromMillis(recordedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Recorder streams one run's journal into a store. The zero of everything
// works: a nil Recorder records nothing and never fails.
type Recorder struct {
	store *Store
	runID int64
	seq   int
}

// NewRecorder begins a run and returns a recorder bound to it.
func NewRecorder(ctx context.Context, store *Store, seed int64, actorName string) (*Recorder, error) {
	runID, err := store.BeginRun(ctx, seed, actorName)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: runID}, nil
}

// RunID returns the identifier of the recorded run.
func (r *Recorder) RunID() int64 {
	if r == nil {
		return 0
	}
	return r.runID
}

// Record appends journal entries to the run.
func (r *Recorder) Record(ctx context.Context, entries []actor.Entry) error {
	if r == nil || r.store == nil {
		return nil
	}
	seq, err := r.store.AppendEntries(ctx, r.runID, r.seq, entries)
	if err != nil {
		return err
	}
	r.seq = seq
	return nil
}

// Finish stamps the run's end time.
func (r *Recorder) Finish(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.EndRun(ctx, r.runID)
}
