package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAnalysis(t *testing.T) {
	m := New()
	m.ObserveAnalysis(KindTopics, time.Now(), nil)
	m.ObserveAnalysis(KindTopics, time.Now(), errors.New("boom"))
	m.ObserveAnalysis(KindSentiment, time.Now(), nil)

	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(KindTopics, "ok")); got != 1 {
		t.Errorf("topics ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(KindTopics, "error")); got != 1 {
		t.Errorf("topics error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.AnalysisDuration); got != 2 {
		t.Errorf("Expected 2 duration series, got %d", got)
	}
}

func TestObserveCacheAndEvents(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveEvent(nil)
	m.ObserveEvent(errors.New("down"))

	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("hits = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 2 {
		t.Errorf("misses = %v", got)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")); got != 1 {
		t.Errorf("event errors = %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis(KindChat, time.Now(), nil)
	m.ObserveCoherence(0.5)
	m.ObserveCache(true)
	m.ObserveEvent(nil)

	h := m.Middleware(func(*http.Request) string { return "x" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(func(*http.Request) string { return "/api/v1/topics" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/topics", nil))
	m.ObserveCoherence(0.42)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/topics", "415")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"textsuite_topics_coherence_count 1", "http_requests_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}
