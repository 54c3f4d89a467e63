package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	base_url    TEXT    NOT NULL,
	started_at  TEXT    NOT NULL,
	duration_ms INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS check_results (
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT    NOT NULL,
	passed      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
`

// Run is a stored smoke-test run.
type Run struct {
	ID        int64
	BaseURL   string
	StartedAt time.Time
	Duration  time.Duration
	Passed    int
	Failed    int
	Checks    []Check
}

// Check is one stored check outcome.
type Check struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Error    string
}

// Store persists runs to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	dsn, err := parseConnectionString(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records a finished run and returns its id.
func (s *Store) Save(ctx context.Context, result *runner.RunResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (base_url, started_at, duration_ms, passed, failed) VALUES (?, ?, ?, ?, ?)`,
		result.BaseURL,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.Duration.Milliseconds(),
		result.Passed,
		result.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, c := range result.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO check_results (run_id, position, name, passed, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, c.Name, c.Passed, c.Duration.Milliseconds(), c.ErrorMessage(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert check %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, base_url, started_at, duration_ms, passed, failed FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &r.BaseURL, &startedAt, &durationMs, &r.Passed, &r.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %d has invalid start time: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for i := range runs {
		checks, err := s.checks(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Checks = checks
	}
	return runs, nil
}

func (s *Store) checks(ctx context.Context, runID int64) ([]Check, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, passed, duration_ms, error FROM check_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []Check
	for rows.Next() {
		var (
			c          Check
			durationMs int64
		)
		if err := rows.Scan(&c.Name, &c.Passed, &durationMs, &c.Error); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// parseConnectionString accepts sqlite://path, sqlite:path or a bare path.
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		connStr = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		connStr = strings.TrimPrefix(connStr, "sqlite:")
	case strings.Contains(connStr, "://"):
		return "", fmt.Errorf("unsupported history database: %s", connStr)
	}

	if connStr == "" {
		return "", fmt.Errorf("history database path is empty")
	}
	return connStr, nil
}
