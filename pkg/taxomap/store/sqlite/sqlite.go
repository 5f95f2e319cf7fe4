package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	country TEXT,
	threshold INTEGER NOT NULL,
	consolidated INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	total_records INTEGER NOT NULL,
	matched_records INTEGER NOT NULL,
	unmapped_records INTEGER NOT NULL,
	output_rows INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_rows (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	url TEXT NOT NULL,
	product TEXT NOT NULL,
	domain TEXT NOT NULL,
	segment TEXT NOT NULL,
	topic TEXT NOT NULL,
	score INTEGER NOT NULL,
	keyword TEXT NOT NULL,
	promoted INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(run_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_rows_url ON run_rows(url);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun replaces the run and its rows in one transaction
func (s *sqliteStore) SaveRun(ctx context.Context, run store.Run, rows []store.Row) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is empty", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, run.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, country, threshold, consolidated, started_at, finished_at,
	total_records, matched_records, unmapped_records, output_rows)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		run.ID,
		run.Country,
		run.Threshold,
		boolToInt(run.Consolidated),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.TotalRecords,
		run.MatchedRecords,
		run.UnmappedRecords,
		run.OutputRows,
	)
	if err != nil {
		return err
	}

	if err := insertRows(ctx, tx, run.ID, rows); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, runID string, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_rows (run_id, seq, url, product, domain, segment, topic, score, keyword, promoted)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, i, r.URL, r.Product, r.Domain, r.Segment, r.Topic, r.Score, r.Keyword, boolToInt(r.Promoted)); err != nil {
			return err
		}
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, country, threshold, consolidated, started_at, finished_at,
	total_records, matched_records, unmapped_records, output_rows
FROM runs WHERE id=?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, country, threshold, consolidated, started_at, finished_at,
	total_records, matched_records, unmapped_records, output_rows
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRows returns the stored rows of a run in emission order
func (s *sqliteStore) RunRows(ctx context.Context, id string) ([]store.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT url, product, domain, segment, topic, score, keyword, promoted
FROM run_rows WHERE run_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var (
			r        store.Row
			promoted int
		)
		if err := rows.Scan(&r.URL, &r.Product, &r.Domain, &r.Segment, &r.Topic, &r.Score, &r.Keyword, &promoted); err != nil {
			return nil, err
		}
		r.Promoted = promoted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		run               store.Run
		consolidated      int
		started, finished string
	)
	err := sc.Scan(
		&run.ID,
		&run.Country,
		&run.Threshold,
		&consolidated,
		&started,
		&finished,
		&run.TotalRecords,
		&run.MatchedRecords,
		&run.UnmappedRecords,
		&run.OutputRows,
	)
	if err != nil {
		return store.Run{}, err
	}
	run.Consolidated = consolidated != 0
	if run.StartedAt, err = parseTime(started); err != nil {
		return store.Run{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return store.Run{}, err
	}
	return run, nil
}

// timeLayout keeps a fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
