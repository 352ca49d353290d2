package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cognicore/textsuite/pkg/textsuite/report"
)

// DefaultListLimit is used when ListReports is called with a non-positive limit.
const DefaultListLimit = 20

// Store archives finished reports.
type Store interface {
	Close() error

	// SaveReport inserts a report, replacing any report with the same id.
	SaveReport(ctx context.Context, r report.Report) error
	// GetReport returns internalerr.ErrNotFound for unknown ids.
	GetReport(ctx context.Context, id string) (report.Report, error)
	// ListReports returns up to limit reports, newest first.
	ListReports(ctx context.Context, limit int) ([]report.Report, error)
}

// Limit applies DefaultListLimit.
func Limit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}

// Row is the column form of a report shared by the SQL backends.
type Row struct {
	ID         string
	Name       string
	Confidence string
	Coherence  float64
	Result     []byte
	Stats      []byte
}

// ToRow encodes the nested parts of a report as JSON.
func ToRow(r report.Report) (Row, error) {
	result, err := json.Marshal(r.Result)
	if err != nil {
		return Row{}, fmt.Errorf("encode result: %w", err)
	}
	stats, err := json.Marshal(r.Stats)
	if err != nil {
		return Row{}, fmt.Errorf("encode stats: %w", err)
	}
	return Row{
		ID:         r.ID,
		Name:       r.Name,
		Confidence: r.Confidence,
		Coherence:  r.Result.CoherenceScore,
		Result:     result,
		Stats:      stats,
	}, nil
}

// Report decodes a row back into a report. CreatedAt is left to the caller.
func (row Row) Report() (report.Report, error) {
	r := report.Report{
		ID:         row.ID,
		Name:       row.Name,
		Confidence: row.Confidence,
	}
	if err := json.Unmarshal(row.Result, &r.Result); err != nil {
		return report.Report{}, fmt.Errorf("decode result of %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Stats, &r.Stats); err != nil {
		return report.Report{}, fmt.Errorf("decode stats of %s: %w", row.ID, err)
	}
	return r, nil
}
