package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	reports map[string]report.Report
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{reports: make(map[string]report.Report)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveReport implements store.Store.
func (s *Store) SaveReport(ctx context.Context, r report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("report without id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = copyReport(r)
	return nil
}

// GetReport implements store.Store.
func (s *Store) GetReport(ctx context.Context, id string) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return report.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return copyReport(r), nil
}

// ListReports implements store.Store. Report ids are ULIDs, so reverse id
// order is newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	limit = store.Limit(limit)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]report.Report, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyReport(s.reports[id]))
	}
	return out, nil
}

func copyReport(r report.Report) report.Report {
	out := r
	if r.Result.Topics != nil {
		out.Result.Topics = make([]topics.Topic, len(r.Result.Topics))
		for i, t := range r.Result.Topics {
			t.Keywords = append([]topics.Keyword(nil), t.Keywords...)
			out.Result.Topics[i] = t
		}
	}
	if r.Result.DominantTopic != nil {
		d := *r.Result.DominantTopic
		out.Result.DominantTopic = &d
	}
	return out
}
