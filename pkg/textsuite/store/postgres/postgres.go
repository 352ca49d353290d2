package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type pgStore struct {
	db *sql.DB
}

// Open connects to PostgreSQL using a lib/pq data source name, checks the
// connection and creates the report table when missing.
func Open(ctx context.Context, dsn string, opts Options) (store.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %v: %w", err, internalerr.ErrStoreUnavailable)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %v: %w", err, internalerr.ErrStoreUnavailable)
	}
	return &pgStore{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	confidence TEXT NOT NULL,
	coherence DOUBLE PRECISION NOT NULL,
	result JSONB NOT NULL,
	stats JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_created_at ON reports(created_at);
`

func (s *pgStore) Close() error {
	return s.db.Close()
}

func (s *pgStore) SaveReport(ctx context.Context, r report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("report without id: %w", internalerr.ErrInvalidInput)
	}
	row, err := store.ToRow(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports (id, name, created_at, confidence, coherence, result, stats)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	created_at = EXCLUDED.created_at,
	confidence = EXCLUDED.confidence,
	coherence = EXCLUDED.coherence,
	result = EXCLUDED.result,
	stats = EXCLUDED.stats`,
		row.ID, row.Name, r.CreatedAt.UTC(), row.Confidence, row.Coherence, string(row.Result), string(row.Stats))
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

func (s *pgStore) GetReport(ctx context.Context, id string) (report.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx, `
SELECT id, name, created_at, confidence, coherence, result, stats
FROM reports WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

func (s *pgStore) ListReports(ctx context.Context, limit int) ([]report.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, created_at, confidence, coherence, result, stats
FROM reports ORDER BY id DESC LIMIT $1`, store.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
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
		row     store.Row
		created time.Time
	)
	if err := sc.Scan(&row.ID, &row.Name, &created, &row.Confidence, &row.Coherence, &row.Result, &row.Stats); err != nil {
		return report.Report{}, err
	}
	r, err := row.Report()
	if err != nil {
		return report.Report{}, err
	}
	r.CreatedAt = created.UTC()
	return r, nil
}
