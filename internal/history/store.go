// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion batches in a SQLite database so past
// runs and their per-file outcomes can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docx-t2s/pkg/types"
)

const (
	dbFile            = "history.db"
	lockFile          = "history.lock"
	defaultMaxResults = 20

	// timeLayout is fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

// ErrLocked is returned when another process holds the history store.
var ErrLocked = errors.New("history store is in use by another process")

// Run summarizes one recorded batch.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at"`
	OutputDir      string    `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Completed      int       `json:"completed" yaml:"completed"`
	Failed         int       `json:"failed" yaml:"failed"`
	ConvertedChars int       `json:"converted_chars" yaml:"converted_chars"`
}

// Total returns the number of files in the run.
func (r Run) Total() int {
	return r.Completed + r.Failed
}

// Store manages the history database. It holds an exclusive file lock on
// its directory until Close.
type Store struct {
	db         *sql.DB
	lock       *flock.Flock
	maxResults int
}

// Open creates or opens cfg.Dir/history.db. It fails with ErrLocked when
// another process has the store open.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Dir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring history lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, lock: lock, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database and the directory lock.
func (s *Store) Close() error {
	dbErr := s.db.Close()
	lockErr := s.lock.Unlock()
	return errors.Join(dbErr, lockErr)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			output_dir TEXT,
			completed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			converted_chars INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT,
			converted_chars INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished batch and its tasks in one transaction. It
// assigns and returns a new run ID; the ID, Completed, Failed, and
// ConvertedChars fields of run are derived from tasks.
func (s *Store) Record(ctx context.Context, run Run, tasks []types.ConversionTask) (Run, error) {
	run.ID = uuid.NewString()
	run.Completed, run.Failed, run.ConvertedChars = 0, 0, 0
	for _, t := range tasks {
		switch t.Status {
		case types.TaskCompleted:
			run.Completed++
			run.ConvertedChars += t.ConvertedChars
		case types.TaskFailed:
			run.Failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, output_dir, completed, failed, converted_chars)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.OutputDir,
		run.Completed, run.Failed, run.ConvertedChars,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (run_id, seq, input_path, output_path, status, error_message, converted_chars)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		_, err := stmt.ExecContext(ctx, run.ID, i, t.InputPath, t.OutputPath,
			string(t.Status), t.ErrorMessage, t.ConvertedChars)
		if err != nil {
			return Run{}, fmt.Errorf("inserting task %s: %w", t.InputPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs first. limit <= 0 uses the configured
// maximum.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, output_dir, completed, failed, converted_chars
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run and its tasks in processing order.
func (s *Store) Get(ctx context.Context, id string) (Run, []types.ConversionTask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, output_dir, completed, failed, converted_chars
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT input_path, output_path, status, error_message, converted_chars
		 FROM tasks WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.ConversionTask
	for rows.Next() {
		var (
			t      types.ConversionTask
			status string
			errMsg sql.NullString
		)
		if err := rows.Scan(&t.InputPath, &t.OutputPath, &status, &errMsg, &t.ConvertedChars); err != nil {
			return Run{}, nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Status = types.TaskStatus(status)
		t.ErrorMessage = errMsg.String
		tasks = append(tasks, t)
	}
	return run, tasks, rows.Err()
}

// Delete removes a run and its tasks.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		started, finished string
		outputDir         sql.NullString
	)
	if err := sc.Scan(&r.ID, &started, &finished, &outputDir, &r.Completed, &r.Failed, &r.ConvertedChars); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	r.FinishedAt, _ = time.Parse(timeLayout, finished)
	r.OutputDir = outputDir.String
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
