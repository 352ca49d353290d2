package report

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// HighConfidence is the coherence above which a result is reported as
// "High" confidence.
const HighConfidence = 0.5

// Confidence levels.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
)

// Report is an archived topic analysis.
type Report struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	CreatedAt  time.Time     `json:"created_at"`
	Result     topics.Result `json:"result"`
	Stats      topics.Stats  `json:"stats"`
	Confidence string        `json:"confidence"`
}

// Builder constructs reports with sortable ids
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Build wraps a finished analysis into a report. Ids issued by one builder
// sort in creation order.
func (b *Builder) Build(name string, result topics.Result, stats topics.Stats) Report {
	b.mu.Lock()
	now := b.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	if result.Topics == nil {
		result.Topics = []topics.Topic{}
	}
	return Report{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		Result:     result,
		Stats:      stats,
		Confidence: Confidence(result.CoherenceScore),
	}
}

// Confidence labels a coherence score.
func Confidence(coherence float64) string {
	if coherence > HighConfidence {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// ParseID validates a report id.
func ParseID(id string) (ulid.ULID, error) {
	return ulid.ParseStrict(id)
}
