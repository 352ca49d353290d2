package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// report table when missing.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}
	// SQLite allows one writer; a single connection keeps concurrent saves
	// from failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL on %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	confidence TEXT NOT NULL,
	coherence REAL NOT NULL,
	result TEXT NOT NULL,
	stats TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_created_at ON reports(created_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveReport inserts or replaces a report
func (s *sqliteStore) SaveReport(ctx context.Context, r report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("report without id: %w", internalerr.ErrInvalidInput)
	}
	row, err := store.ToRow(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports (id, name, created_at, confidence, coherence, result, stats)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	created_at=excluded.created_at,
	confidence=excluded.confidence,
	coherence=excluded.coherence,
	result=excluded.result,
	stats=excluded.stats;
`, row.ID, row.Name, r.CreatedAt.UTC().Format(time.RFC3339Nano), row.Confidence, row.Coherence,
		string(row.Result), string(row.Stats))
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads one report by id
func (s *sqliteStore) GetReport(ctx context.Context, id string) (report.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx, `
SELECT id, name, created_at, confidence, coherence, result, stats
FROM reports
WHERE id = ?;
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListReports returns the newest reports first
func (s *sqliteStore) ListReports(ctx context.Context, limit int) ([]report.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, created_at, confidence, coherence, result, stats
FROM reports
ORDER BY id DESC
LIMIT ?;
`, store.Limit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []report.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (report.Report, error) {
	var (
		row           store.Row
		created       string
		result, stats string
	)
	if err := sc.Scan(&row.ID, &row.Name, &created, &row.Confidence, &row.Coherence, &result, &stats); err != nil {
		return report.Report{}, err
	}
	row.Result, row.Stats = []byte(result), []byte(stats)

	r, err := row.Report()
	if err != nil {
		return report.Report{}, err
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return report.Report{}, fmt.Errorf("parse created_at of %s: %w", row.ID, err)
	}
	return r, nil
}
